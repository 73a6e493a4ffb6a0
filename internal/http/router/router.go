// Package router arma el árbol de rutas HTTP (chi) con sus middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	certctrl "github.com/dropDatabas3/hellocert/internal/http/controllers/certificates"
	healthctrl "github.com/dropDatabas3/hellocert/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/hellocert/internal/http/errors"
	mw "github.com/dropDatabas3/hellocert/internal/http/middlewares"
)

// Deps contiene los controllers a montar. Metrics es opcional.
type Deps struct {
	Certificates *certctrl.Controller
	Health       *healthctrl.Controller
	Metrics      http.Handler
}

// New devuelve el handler raíz.
//
//	POST /v1/certificates          emisión (JSON o form)
//	GET  /v1/certificates/{id}     registro guardado
//	GET  /verify?token=…           verificación pública
//	GET  /.well-known/jwks.json    clave pública
//	GET  /readyz, /metrics
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Std(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// infra: sin logging (muy frecuentes)
	r.Get("/readyz", d.Health.Readyz)
	r.With(mw.WithCacheControl("public, max-age=300")).Get("/.well-known/jwks.json", d.Health.JWKS)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.Std(mw.WithNoStore(), mw.WithLogging())...)

		r.Post("/v1/certificates", d.Certificates.Create)
		r.Get("/v1/certificates/{id}", d.Certificates.Get)
		r.Get("/verify", d.Certificates.Verify)
	})

	return r
}
