package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusExpired Status = "expired"
)

// Result de una verificación. Claims viene en Valid y también en Expired
// (la firma es buena, solo venció). Err lleva el sentinel del rechazo.
type Result struct {
	Status Status
	Claims *CertificateClaims
	Err    error
}

func (r Result) Valid() bool { return r.Status == StatusValid }

// Reason devuelve "" si es válido; si no, "invalid" | "expired".
func (r Result) Reason() string {
	if r.Status == StatusValid {
		return ""
	}
	return string(r.Status)
}

// Verifier chequea firma RS256 contra una única pública y luego vencimiento.
type Verifier struct {
	Pub *rsa.PublicKey
	Now func() time.Time

	parser *jwtv5.Parser
}

func NewVerifier(pub *rsa.PublicKey) *Verifier {
	return &Verifier{
		Pub: pub,
		Now: time.Now,
		parser: newParser(),
	}
}

// exp lo chequeamos a mano después de la firma; strict decoding
// rechaza segmentos base64 con bits de relleno alterados.
func newParser() *jwtv5.Parser {
	return jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{AlgRS256}),
		jwtv5.WithoutClaimsValidation(),
		jwtv5.WithStrictDecoding(),
	)
}

// Verify nunca devuelve error ni hace panic: todo rechazo es un Result.
// Orden: estructura → firma → exp. Una firma mala gana sobre el vencimiento.
func (v *Verifier) Verify(token string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Status: StatusInvalid, Err: fmt.Errorf("%w: %v", ErrMalformedToken, r)}
		}
	}()

	claims, err := v.Decode(token)
	if err != nil {
		return Result{Status: StatusInvalid, Err: err}
	}
	// vencido si now >= exp
	if !v.now().Before(claims.ExpiresAt.Time) {
		return Result{Status: StatusExpired, Claims: claims, Err: ErrTokenExpired}
	}
	return Result{Status: StatusValid, Claims: claims}
}

// Decode valida estructura y firma (sin mirar el reloj) y devuelve los claims.
// Errores: ErrMalformedToken | ErrSignatureMismatch (wrappeados).
func (v *Verifier) Decode(token string) (*CertificateClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if v.Pub == nil {
		return nil, errors.New("verifier: no public key")
	}

	p := v.parser
	if p == nil {
		p = newParser()
	}
	claims := &CertificateClaims{}
	_, err := p.ParseWithClaims(token, claims, func(*jwtv5.Token) (any, error) {
		return v.Pub, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}
	if claims.CertID == "" {
		return nil, fmt.Errorf("%w: missing cert_id", ErrMalformedToken)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrMalformedToken)
	}
	return claims, nil
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}
