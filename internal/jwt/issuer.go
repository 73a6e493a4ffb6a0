package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultValidity: vigencia fija de un certificado.
const DefaultValidity = 365 * 24 * time.Hour

// CertificateClaims es el payload firmado de un certificado.
// exp/iat viajan como NumericDate (segundos Unix) vía RegisteredClaims.
type CertificateClaims struct {
	CertID     string `json:"cert_id"`
	Name       string `json:"name"`
	Course     string `json:"course"`
	Date       string `json:"date"`
	IssuerName string `json:"issuer"`
	jwtv5.RegisteredClaims
}

// IssuedAtTime / ExpiresAtTime devuelven los timestamps como time.Time (zero si faltan).
func (c *CertificateClaims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time.UTC()
}

func (c *CertificateClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time.UTC()
}

// Issuer firma certificados con la clave activa.
type Issuer struct {
	Name     string        // claim "issuer"
	Keys     *KeySet       // par activo
	Validity time.Duration // exp = iat + Validity

	// inyectables para tests
	Now   func() time.Time
	NewID func() string
}

func NewIssuer(name string, keys *KeySet) *Issuer {
	return &Issuer{
		Name:     name,
		Keys:     keys,
		Validity: DefaultValidity,
		Now:      time.Now,
		NewID:    func() string { return uuid.New().String() },
	}
}

// Issue firma un certificado nuevo y devuelve (certificate_id, token).
func (i *Issuer) Issue(subject, course, date string) (string, string, error) {
	claims, token, err := i.IssueClaims(subject, course, date)
	if err != nil {
		return "", "", err
	}
	return claims.CertID, token, nil
}

// IssueClaims es Issue pero devolviendo además los claims firmados
// (el orquestador los necesita para iat/exp).
func (i *Issuer) IssueClaims(subject, course, date string) (*CertificateClaims, string, error) {
	// date es texto libre del caller: no se valida
	if strings.TrimSpace(subject) == "" {
		return nil, "", fmt.Errorf("%w: name", ErrEmptyField)
	}
	if strings.TrimSpace(course) == "" {
		return nil, "", fmt.Errorf("%w: course", ErrEmptyField)
	}
	if i.Keys == nil || i.Keys.Priv == nil {
		return nil, "", errors.New("issuer: no signing key")
	}

	// NumericDate trunca a segundos al serializar; truncamos antes para
	// que los claims devueltos coincidan con los firmados.
	now := i.now().UTC().Truncate(time.Second)
	claims := &CertificateClaims{
		CertID:     i.newID(),
		Name:       subject,
		Course:     course,
		Date:       date,
		IssuerName: i.Name,
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(i.validity())),
		},
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Keys.Priv)
	if err != nil {
		return nil, "", err
	}
	return claims, signed, nil
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) newID() string {
	if i.NewID != nil {
		return i.NewID()
	}
	return uuid.New().String()
}

func (i *Issuer) validity() time.Duration {
	if i.Validity > 0 {
		return i.Validity
	}
	return DefaultValidity
}
