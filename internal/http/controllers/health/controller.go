// Package health contiene los controllers de health check y JWKS.
package health

import (
	"context"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/hellocert/internal/http/dto/health"
	"github.com/dropDatabas3/hellocert/internal/http/helpers"
	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
)

// Deps del controller. Ready es opcional (record store).
type Deps struct {
	Keys    *jwtx.KeySet
	Ready   func(ctx context.Context) error
	Version string
}

type Controller struct {
	deps Deps
}

func NewController(d Deps) *Controller {
	return &Controller{deps: d}
}

// Readyz handles GET /readyz. 503 si algún componente falla.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{
		Status:     "ready",
		Components: map[string]dto.HealthStatus{},
		Version:    c.deps.Version,
		Timestamp:  time.Now().UTC(),
	}

	if c.deps.Keys != nil && c.deps.Keys.Priv != nil {
		resp.Components["keys"] = dto.HealthStatus{Status: "ok"}
		resp.ActiveKeyID = c.deps.Keys.KID
	} else {
		resp.Status = "unavailable"
		resp.Components["keys"] = dto.HealthStatus{Status: "error", Message: "no signing key"}
	}

	if c.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.deps.Ready(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Components["store"] = dto.HealthStatus{Status: "error", Message: err.Error()}
		} else {
			resp.Components["store"] = dto.HealthStatus{Status: "ok"}
		}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}

// JWKS handles GET /.well-known/jwks.json (solo la pública).
func (c *Controller) JWKS(w http.ResponseWriter, r *http.Request) {
	if c.deps.Keys == nil {
		http.Error(w, "no signing key", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.deps.Keys.JWKSJSON())
}
