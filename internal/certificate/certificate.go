// Package certificate orquesta la emisión y verificación de certificados:
// firma con el keystore activo, arma el link público de verificación y
// guarda un registro consultable por id.
package certificate

import (
	"errors"
	"net/url"
	"strings"
	"time"

	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
)

// Certificate es lo que se devuelve al emitir (y lo que guarda el record store).
type Certificate struct {
	ID               string    `json:"certificate_id"`
	Name             string    `json:"name"`
	Course           string    `json:"course"`
	Date             string    `json:"date"`
	Issuer           string    `json:"issuer"`
	Token            string    `json:"token"`
	VerificationLink string    `json:"verification_link"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// CreateRequest: datos del alumno. BaseURL vacío usa la URL pública configurada.
type CreateRequest struct {
	Name    string
	Course  string
	Date    string
	BaseURL string
}

var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("certificate_not_found")
)

// VerificationLink arma {base}/verify?token={token}, sin "/" duplicada.
func VerificationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/verify?token=" + url.QueryEscape(token)
}

func fromClaims(c *jwtx.CertificateClaims, token, link string) *Certificate {
	return &Certificate{
		ID:               c.CertID,
		Name:             c.Name,
		Course:           c.Course,
		Date:             c.Date,
		Issuer:           c.IssuerName,
		Token:            token,
		VerificationLink: link,
		IssuedAt:         c.IssuedAtTime(),
		ExpiresAt:        c.ExpiresAtTime(),
	}
}
