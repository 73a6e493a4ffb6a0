package util

import "testing"

func TestMaskToken(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"   ":              "",
		"short":            "***",
		"0123456789abcdef": "***",
		"eyJhbGciOiJSUzI1NiJ9.payload.signatureXYZ": "eyJhbGci…eXYZ",
	}
	for in, want := range cases {
		if got := MaskToken(in); got != want {
			t.Errorf("MaskToken(%q) = %q, want %q", in, got, want)
		}
	}
}
