// Package certificates contiene los DTOs de emisión y verificación.
package certificates

import "time"

// CreateRequest es el body de POST /v1/certificates (JSON o form).
type CreateRequest struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Date   string `json:"date"`
}

// CertificateResponse se devuelve al emitir y en GET /v1/certificates/{id}.
type CertificateResponse struct {
	CertificateID    string    `json:"certificate_id"`
	VerificationLink string    `json:"verification_link"`
	Token            string    `json:"token"`
	Name             string    `json:"name"`
	Course           string    `json:"course"`
	Date             string    `json:"date"`
	Issuer           string    `json:"issuer"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// VerifyResponse de GET /verify. Payload viene en valid y expired.
type VerifyResponse struct {
	Valid   bool     `json:"valid"`
	Status  string   `json:"status"`           // valid | invalid | expired
	Reason  string   `json:"reason,omitempty"` // invalid | expired
	Payload *Payload `json:"payload,omitempty"`
}

// Payload son los claims del certificado tal como vienen firmados.
type Payload struct {
	CertificateID string `json:"cert_id"`
	Name          string `json:"name"`
	Course        string `json:"course"`
	Date          string `json:"date"`
	Issuer        string `json:"issuer"`
	IssuedAt      int64  `json:"iat,omitempty"`
	ExpiresAt     int64  `json:"exp"`
}
