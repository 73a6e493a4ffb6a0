package certificate_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellocert/internal/cache"
	"github.com/dropDatabas3/hellocert/internal/certificate"
	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
	"github.com/dropDatabas3/hellocert/internal/metrics"
)

var (
	keysOnce sync.Once
	keys     *jwtx.KeySet
)

func sharedKeys(t *testing.T) *jwtx.KeySet {
	t.Helper()
	keysOnce.Do(func() {
		var err error
		keys, err = jwtx.GenerateRSA(2048)
		if err != nil {
			panic(err)
		}
	})
	return keys
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T, st certificate.Store, clk *clock) *certificate.Service {
	t.Helper()
	d := certificate.Deps{
		Keys:       jwtx.StaticKeystore(sharedKeys(t)),
		IssuerName: "Mi Academia",
		PublicURL:  "http://localhost:5000",
		Store:      st,
	}
	if clk != nil {
		d.Now = clk.Now
	}
	svc, err := certificate.NewService(d)
	require.NoError(t, err)
	return svc
}

func memStore() certificate.Store {
	return certificate.NewCacheStore(cache.NewMemory("test", 0), 0)
}

func TestCreate_AnaGomez(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memStore(), nil)

	issuedBefore := testutil.ToFloat64(metrics.CertificatesIssued)
	cert, err := svc.Create(ctx, certificate.CreateRequest{Name: "Ana Gómez", Course: "Go Básico", Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, issuedBefore+1, testutil.ToFloat64(metrics.CertificatesIssued))

	assert.NotEmpty(t, cert.ID)
	assert.Equal(t, "Ana Gómez", cert.Name)
	assert.Equal(t, "Mi Academia", cert.Issuer)
	assert.Equal(t, 365*24*time.Hour, cert.ExpiresAt.Sub(cert.IssuedAt))
	assert.Equal(t, "http://localhost:5000/verify?token="+cert.Token, cert.VerificationLink)

	// el token sacado del link verifica
	u, err := url.Parse(cert.VerificationLink)
	require.NoError(t, err)
	res := svc.Verify(ctx, u.Query().Get("token"))
	require.True(t, res.Valid(), "err=%v", res.Err)
	assert.Equal(t, cert.ID, res.Claims.CertID)
	assert.Equal(t, "Go Básico", res.Claims.Course)
	assert.Equal(t, "2024-05-01", res.Claims.Date)

	got, err := svc.Get(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.Token, got.Token)
	assert.True(t, cert.ExpiresAt.Equal(got.ExpiresAt))
}

func TestCreate_BaseURLOverride(t *testing.T) {
	svc := newService(t, nil, nil)
	cert, err := svc.Create(context.Background(), certificate.CreateRequest{
		Name: "Ana", Course: "Go", Date: "2024-05-01", BaseURL: "https://certs.example.org/",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cert.VerificationLink, "https://certs.example.org/verify?token="))
}

func TestCreate_RejectsEmptyFields(t *testing.T) {
	svc := newService(t, nil, nil)
	for _, req := range []certificate.CreateRequest{
		{Course: "Go", Date: "2024-05-01"},
		{Name: "Ana", Date: "2024-05-01"},
		{Name: "  ", Course: "Go", Date: "2024-05-01"},
	} {
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, certificate.ErrInvalidInput)
	}
}

func TestVerify_Outcomes(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	svc := newService(t, nil, clk)

	cert, err := svc.Create(ctx, certificate.CreateRequest{Name: "Ana", Course: "Go", Date: "2024-05-01"})
	require.NoError(t, err)

	invalidBefore := testutil.ToFloat64(metrics.CertificateVerifications.WithLabelValues("invalid"))
	res := svc.Verify(ctx, "not-a-real-token")
	assert.Equal(t, jwtx.StatusInvalid, res.Status)
	assert.Equal(t, "invalid", res.Reason())
	assert.Equal(t, invalidBefore+1, testutil.ToFloat64(metrics.CertificateVerifications.WithLabelValues("invalid")))

	clk.now = clk.now.Add(365 * 24 * time.Hour)
	res = svc.Verify(ctx, cert.Token)
	assert.Equal(t, jwtx.StatusExpired, res.Status)
	assert.Equal(t, "expired", res.Reason())
	require.NotNil(t, res.Claims)
	assert.Equal(t, cert.ID, res.Claims.CertID)
}

func TestGet_Unknown(t *testing.T) {
	svc := newService(t, memStore(), nil)
	_, err := svc.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, certificate.ErrNotFound)

	noStore := newService(t, nil, nil)
	_, err = noStore.Get(context.Background(), "x")
	assert.ErrorIs(t, err, certificate.ErrNotFound)
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, *certificate.Certificate) error { return f.err }
func (f failingStore) Get(context.Context, string) (*certificate.Certificate, error) {
	return nil, f.err
}
func (f failingStore) Ping(context.Context) error { return f.err }

func TestCreate_StoreFailureIsNotFatal(t *testing.T) {
	boom := errors.New("redis down")
	svc := newService(t, failingStore{err: boom}, nil)

	cert, err := svc.Create(context.Background(), certificate.CreateRequest{Name: "Ana", Course: "Go", Date: "2024-05-01"})
	require.NoError(t, err)
	assert.True(t, svc.Verify(context.Background(), cert.Token).Valid())
	assert.ErrorIs(t, svc.Ready(context.Background()), boom)
}

type brokenKeystore struct{}

func (brokenKeystore) Ensure() (*jwtx.KeySet, error) {
	return nil, &jwtx.KeyIOError{Op: "read", Path: "private.pem", Err: errors.New("permission denied")}
}

func TestNewService_KeystoreFailureIsFatal(t *testing.T) {
	_, err := certificate.NewService(certificate.Deps{Keys: brokenKeystore{}, IssuerName: "x"})
	var kerr *jwtx.KeyIOError
	assert.ErrorAs(t, err, &kerr)

	_, err = certificate.NewService(certificate.Deps{})
	assert.Error(t, err)
}

func TestVerificationLink(t *testing.T) {
	cases := map[string]string{
		"http://localhost:5000":   "http://localhost:5000/verify?token=a.b.c",
		"http://localhost:5000/":  "http://localhost:5000/verify?token=a.b.c",
		"https://x.org/base//":    "https://x.org/base/verify?token=a.b.c",
		"https://x.org/base/path": "https://x.org/base/path/verify?token=a.b.c",
	}
	for base, want := range cases {
		assert.Equal(t, want, certificate.VerificationLink(base, "a.b.c"), base)
	}
}
