package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCertificates_Twice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterCertificates(reg))
	require.NoError(t, RegisterCertificates(reg))

	before := testutil.ToFloat64(CertificateVerifications.WithLabelValues("expired"))
	CertificateVerifications.WithLabelValues("expired").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CertificateVerifications.WithLabelValues("expired")))
}
