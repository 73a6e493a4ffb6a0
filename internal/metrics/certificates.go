package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del dominio de certificados. Paquete aparte para que certificate
// y http puedan usarlas sin importarse entre sí.

var (
	CertificatesIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certificates_issued_total",
		Help: "Certificados firmados",
	})

	CertificateVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certificate_verifications_total",
		Help: "Verificaciones por resultado (valid|invalid|expired)",
	}, []string{"result"})

	SigningLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "certificate_signing_latency_ms",
		Help:    "Latencia de firma RS256 en milisegundos",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
	})

	StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certificate_store_errors_total",
		Help: "Errores del record store por operación",
	}, []string{"op"})
)

// RegisterCertificates registers the domain metrics on the given registry (or default if nil).
func RegisterCertificates(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{CertificatesIssued, CertificateVerifications, SigningLatency, StoreErrors} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}
