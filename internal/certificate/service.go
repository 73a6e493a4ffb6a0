package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
	"github.com/dropDatabas3/hellocert/internal/metrics"
	"github.com/dropDatabas3/hellocert/internal/observability/logger"
	"github.com/dropDatabas3/hellocert/internal/util"
)

// Deps contiene las dependencias del service.
type Deps struct {
	Keys       jwtx.Keystore
	IssuerName string
	Validity   time.Duration
	PublicURL  string
	Store      Store // opcional

	// Now permite fijar el reloj en tests (firma y verificación).
	Now func() time.Time
}

// Service emite y verifica certificados con un único par de claves.
type Service struct {
	keys      *jwtx.KeySet
	issuer    *jwtx.Issuer
	verifier  *jwtx.Verifier
	store     Store
	publicURL string
}

// NewService resuelve las claves (Ensure) y arma issuer/verifier.
// Un error acá es fatal: sin claves no se puede firmar ni verificar.
func NewService(d Deps) (*Service, error) {
	if d.Keys == nil {
		return nil, errors.New("certificate: keystore is required")
	}
	ks, err := d.Keys.Ensure()
	if err != nil {
		return nil, err
	}

	iss := jwtx.NewIssuer(d.IssuerName, ks)
	if d.Validity > 0 {
		iss.Validity = d.Validity
	}
	ver := jwtx.NewVerifier(ks.Pub)
	if d.Now != nil {
		iss.Now = d.Now
		ver.Now = d.Now
	}

	return &Service{
		keys:      ks,
		issuer:    iss,
		verifier:  ver,
		store:     d.Store,
		publicURL: d.PublicURL,
	}, nil
}

// Create firma un certificado nuevo y devuelve token + link de verificación.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Certificate, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("certificate"),
		logger.Op("Create"),
	)

	base := strings.TrimSpace(req.BaseURL)
	if base == "" {
		base = s.publicURL
	}

	start := time.Now()
	claims, token, err := s.issuer.IssueClaims(req.Name, req.Course, req.Date)
	if err != nil {
		if errors.Is(err, jwtx.ErrEmptyField) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		log.Error("sign failed", logger.Err(err))
		return nil, err
	}
	metrics.SigningLatency.Observe(float64(time.Since(start).Microseconds()) / 1000)
	metrics.CertificatesIssued.Inc()

	cert := fromClaims(claims, token, VerificationLink(base, token))

	if s.store != nil {
		if err := s.store.Save(ctx, cert); err != nil {
			// el token ya es válido por sí mismo; solo perdemos el lookup por id
			metrics.StoreErrors.WithLabelValues("save").Inc()
			log.Warn("certificate record not saved", logger.CertificateID(cert.ID), logger.Err(err))
		}
	}

	log.Info("certificate issued",
		logger.CertificateID(cert.ID),
		logger.KID(s.keys.KID),
		logger.ExpiresAt(cert.ExpiresAt),
	)
	return cert, nil
}

// Verify clasifica el token en valid | invalid | expired. Nunca falla.
func (s *Service) Verify(ctx context.Context, token string) jwtx.Result {
	res := s.verifier.Verify(token)
	metrics.CertificateVerifications.WithLabelValues(string(res.Status)).Inc()

	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Verify"), logger.Outcome(string(res.Status)))
	if res.Claims != nil {
		log = log.With(logger.CertificateID(res.Claims.CertID))
	} else {
		log = log.With(logger.String("token", util.MaskToken(token)))
	}
	if res.Err != nil {
		log.Debug("certificate rejected", logger.Err(res.Err))
	} else {
		log.Debug("certificate verified")
	}
	return res
}

// Get devuelve el registro guardado al emitir.
func (s *Service) Get(ctx context.Context, id string) (*Certificate, error) {
	id = strings.TrimSpace(id)
	if id == "" || s.store == nil {
		return nil, ErrNotFound
	}
	c, err := s.store.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.StoreErrors.WithLabelValues("get").Inc()
	}
	return c, err
}

// Ready chequea el record store (las claves ya se resolvieron en NewService).
func (s *Service) Ready(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}

// Keys devuelve el par activo (para JWKS).
func (s *Service) Keys() *jwtx.KeySet { return s.keys }
