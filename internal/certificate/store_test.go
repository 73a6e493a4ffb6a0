package certificate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellocert/internal/cache"
	"github.com/dropDatabas3/hellocert/internal/certificate"
)

func TestCacheStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	st := certificate.NewCacheStore(cache.NewMemory("", 0), time.Hour)

	in := &certificate.Certificate{
		ID:        "c-1",
		Name:      "Ana",
		Course:    "Go",
		Date:      "2024-05-01",
		Issuer:    "Mi Academia",
		Token:     "a.b.c",
		IssuedAt:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.Save(ctx, in))

	out, err := st.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.NoError(t, st.Ping(ctx))
}

func TestCacheStore_ExpiredRecordIsSkipped(t *testing.T) {
	ctx := context.Background()
	st := certificate.NewCacheStore(cache.NewMemory("", 0), 0)

	require.NoError(t, st.Save(ctx, &certificate.Certificate{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)}))
	_, err := st.Get(ctx, "old")
	assert.ErrorIs(t, err, certificate.ErrNotFound)
}

func TestCacheStore_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("", 0)
	require.NoError(t, c.Set(ctx, "cert:bad", []byte("{"), 0))

	_, err := certificate.NewCacheStore(c, 0).Get(ctx, "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, certificate.ErrNotFound)
}
