package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
)

const (
	AlgRS256 = "RS256"

	pemPrivateRSA = "RSA PRIVATE KEY"
	pemPrivatePK8 = "PRIVATE KEY"
	pemPublicPKIX = "PUBLIC KEY"
	pemPublicRSA  = "RSA PUBLIC KEY"

	MinRSABits = 2048
)

// KeySet es el par activo. No hay rotación: una sola clave por despliegue.
type KeySet struct {
	Priv *rsa.PrivateKey
	Pub  *rsa.PublicKey
	KID  string
	Alg  string // "RS256"
}

// GenerateRSA genera un par nuevo con crypto/rand.
func GenerateRSA(bits int) (*KeySet, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("%w: %d bits", ErrWeakKey, bits)
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return NewKeySet(priv), nil
}

// NewKeySet arma el KeySet de una privada ya cargada. KID = thumbprint RFC 7638.
func NewKeySet(priv *rsa.PrivateKey) *KeySet {
	pub := &priv.PublicKey
	return &KeySet{Priv: priv, Pub: pub, KID: Thumbprint(pub), Alg: AlgRS256}
}

// Thumbprint calcula el JWK thumbprint SHA-256 (RFC 7638) de una pública RSA.
// Miembros requeridos en orden lexicográfico y sin espacios.
func Thumbprint(pub *rsa.PublicKey) string {
	canonical := fmt.Sprintf(`{"e":"%s","kty":"RSA","n":"%s"}`, b64e(pub), b64n(pub))
	sum := sha256.Sum256([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func b64n(pub *rsa.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
}

func b64e(pub *rsa.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
}

// ----- PEM -----

// MarshalPrivatePEM serializa en PKCS#1 ("RSA PRIVATE KEY").
func MarshalPrivatePEM(priv *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: pemPrivateRSA, Bytes: x509.MarshalPKCS1PrivateKey(priv)})
}

// MarshalPublicPEM serializa en SubjectPublicKeyInfo ("PUBLIC KEY").
func MarshalPublicPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPublicPKIX, Bytes: der}), nil
}

// ParsePrivatePEM acepta PKCS#1 y PKCS#8 (solo RSA).
func ParsePrivatePEM(b []byte) (*rsa.PrivateKey, error) {
	blk, _ := pem.Decode(b)
	if blk == nil {
		return nil, errors.New("no PEM block found")
	}
	switch blk.Type {
	case pemPrivateRSA:
		return x509.ParsePKCS1PrivateKey(blk.Bytes)
	case pemPrivatePK8:
		k, err := x509.ParsePKCS8PrivateKey(blk.Bytes)
		if err != nil {
			return nil, err
		}
		rk, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type %T", k)
		}
		return rk, nil
	default:
		return nil, fmt.Errorf("unexpected PEM type %q", blk.Type)
	}
}

// ParsePublicPEM acepta "PUBLIC KEY" (PKIX) y "RSA PUBLIC KEY" (PKCS#1).
func ParsePublicPEM(b []byte) (*rsa.PublicKey, error) {
	blk, _ := pem.Decode(b)
	if blk == nil {
		return nil, errors.New("no PEM block found")
	}
	switch blk.Type {
	case pemPublicRSA:
		return x509.ParsePKCS1PublicKey(blk.Bytes)
	case pemPublicPKIX:
		k, err := x509.ParsePKIXPublicKey(blk.Bytes)
		if err != nil {
			return nil, err
		}
		rk, ok := k.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("unsupported public key type %T", k)
		}
		return rk, nil
	default:
		return nil, fmt.Errorf("unexpected PEM type %q", blk.Type)
	}
}
