package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/hellocert/internal/http/dto/certificates"
	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
)

type cli struct {
	t    *testing.T
	priv string
	pub  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("PUBLIC_URL", "https://certs.example.org")
	t.Setenv("CERT_ISSUER", "Academia CLI")
	return &cli{t: t, priv: filepath.Join(dir, "private.pem"), pub: filepath.Join(dir, "public.pem")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--private-key", c.priv, "--public-key", c.pub}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

func TestKeysShow_FailsWithoutKeys(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("keys", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys init")
}

func TestKeysInit_ThenShow(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("keys", "init")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "generated kid="), out)

	out, err = c.run("keys", "init")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "loaded kid="), out)

	out, err = c.run("keys", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "alg: RS256")
	assert.Contains(t, out, "-----BEGIN PUBLIC KEY-----")

	out, err = c.run("keys", "show", "--jwks")
	require.NoError(t, err)
	var set jwtx.JWKS
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "RSA", set.Keys[0].Kty)
}

func TestIssueThenVerify(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("issue", "--name", "Ana Gómez", "--course", "Go Avanzado", "--date", "2024-05-01")
	require.NoError(t, err)

	var cert dto.CertificateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &cert))
	assert.NotEmpty(t, cert.CertificateID)
	assert.Equal(t, "Academia CLI", cert.Issuer)
	assert.True(t, strings.HasPrefix(cert.VerificationLink, "https://certs.example.org/verify?token="))

	out, err = c.run("verify", cert.Token)
	require.NoError(t, err)
	var res dto.VerifyResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Valid)
	require.NotNil(t, res.Payload)
	assert.Equal(t, "Ana Gómez", res.Payload.Name)
	assert.Equal(t, cert.CertificateID, res.Payload.CertificateID)

	// firma alterada
	tampered := cert.Token[:len(cert.Token)-2] + "xx"
	if tampered == cert.Token {
		tampered = cert.Token[:len(cert.Token)-2] + "yy"
	}
	out, err = c.run("verify", tampered)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, `"status": "invalid"`)
}

func TestIssue_RequiresNameAndCourse(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("issue", "--name", "Ana")
	require.Error(t, err)

	_, err = c.run("issue", "--name", "  ", "--course", "Go")
	require.Error(t, err)
	assert.Equal(t, -1, exitCode(err))
}

func TestVerify_Expired(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("keys", "init")
	require.NoError(t, err)

	set, err := jwtx.NewFileKeystore(c.priv, c.pub, 2048).Ensure()
	require.NoError(t, err)
	iss := jwtx.NewIssuer("Academia CLI", set)
	iss.Now = func() time.Time { return time.Now().Add(-400 * 24 * time.Hour) }
	_, token, err := iss.Issue("Ana", "Go", "2023-01-01")
	require.NoError(t, err)

	out, err := c.run("verify", token)
	assert.Equal(t, 2, exitCode(err))
	var res dto.VerifyResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "expired", res.Status)
	assert.False(t, res.Valid)
	require.NotNil(t, res.Payload)
	assert.Equal(t, "Ana", res.Payload.Name)
}

func TestVerify_WithoutKeysIsError(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("verify", "a.b.c")
	require.Error(t, err)
	assert.Equal(t, -1, exitCode(err))
}
