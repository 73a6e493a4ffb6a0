// Package certificates contiene los controllers de emisión y verificación.
package certificates

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellocert/internal/certificate"
	dto "github.com/dropDatabas3/hellocert/internal/http/dto/certificates"
	httperrors "github.com/dropDatabas3/hellocert/internal/http/errors"
	"github.com/dropDatabas3/hellocert/internal/http/helpers"
	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
	"github.com/dropDatabas3/hellocert/internal/observability/logger"
)

// Service es lo que el controller necesita del orquestador.
type Service interface {
	Create(ctx context.Context, req certificate.CreateRequest) (*certificate.Certificate, error)
	Get(ctx context.Context, id string) (*certificate.Certificate, error)
	Verify(ctx context.Context, token string) jwtx.Result
}

// Controller maneja /v1/certificates y /verify.
type Controller struct {
	service Service
}

func NewController(s Service) *Controller {
	return &Controller{service: s}
}

// Create handles POST /v1/certificates. Acepta JSON o form (name, course, date).
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CertificateController.Create"))

	var in dto.CreateRequest
	switch mt := helpers.MediaType(r); mt {
	case "application/json":
		if err := helpers.ReadJSON(w, r, &in); err != nil {
			httperrors.WriteError(w, err)
			return
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := helpers.ReadForm(w, r); err != nil {
			httperrors.WriteError(w, err)
			return
		}
		in = dto.CreateRequest{
			Name:   r.FormValue("name"),
			Course: r.FormValue("course"),
			Date:   r.FormValue("date"),
		}
	default:
		httperrors.WriteError(w, httperrors.ErrUnsupportedMediaType.WithDetail(mt))
		return
	}

	cert, err := c.service.Create(ctx, certificate.CreateRequest{Name: in.Name, Course: in.Course, Date: in.Date})
	if err != nil {
		if errors.Is(err, certificate.ErrInvalidInput) {
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name and course are required"))
			return
		}
		log.Error("create certificate failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	w.Header().Set("Location", "/v1/certificates/"+cert.ID)
	helpers.WriteJSON(w, http.StatusCreated, toResponse(cert))
}

// Get handles GET /v1/certificates/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	cert, err := c.service.Get(ctx, id)
	switch {
	case errors.Is(err, certificate.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrCertificateNotFound)
		return
	case err != nil:
		logger.From(ctx).Warn("certificate lookup failed", logger.Op("CertificateController.Get"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(cert))
}

// Verify handles GET /verify?token=…
// Siempre 200: el resultado va en el body. Token ausente = invalid.
func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	res := c.service.Verify(r.Context(), r.URL.Query().Get("token"))

	out := dto.VerifyResponse{
		Valid:  res.Valid(),
		Status: string(res.Status),
		Reason: res.Reason(),
	}
	if res.Claims != nil {
		out.Payload = &dto.Payload{
			CertificateID: res.Claims.CertID,
			Name:          res.Claims.Name,
			Course:        res.Claims.Course,
			Date:          res.Claims.Date,
			Issuer:        res.Claims.IssuerName,
			ExpiresAt:     res.Claims.ExpiresAtTime().Unix(),
		}
		if res.Claims.IssuedAt != nil {
			out.Payload.IssuedAt = res.Claims.IssuedAtTime().Unix()
		}
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func toResponse(c *certificate.Certificate) dto.CertificateResponse {
	return dto.CertificateResponse{
		CertificateID:    c.ID,
		VerificationLink: c.VerificationLink,
		Token:            c.Token,
		Name:             c.Name,
		Course:           c.Course,
		Date:             c.Date,
		Issuer:           c.Issuer,
		IssuedAt:         c.IssuedAt,
		ExpiresAt:        c.ExpiresAt,
	}
}
