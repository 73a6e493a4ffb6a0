package jwt

import "encoding/json"

// ----- JWKS (serialización) -----

type JWK struct {
	Kty string `json:"kty"` // "RSA"
	Kid string `json:"kid"`
	Alg string `json:"alg"` // "RS256"
	Use string `json:"use"` // "sig"
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK devuelve la pública del set como JWK (nunca la privada).
func (k *KeySet) JWK() JWK {
	return JWK{
		Kty: "RSA",
		Kid: k.KID,
		Alg: k.Alg,
		Use: "sig",
		N:   b64n(k.Pub),
		E:   b64e(k.Pub),
	}
}

// JWKSJSON devuelve el JWKS (solo la pública) en JSON.
func (k *KeySet) JWKSJSON() []byte {
	b, _ := json.Marshal(JWKS{Keys: []JWK{k.JWK()}})
	return b
}
