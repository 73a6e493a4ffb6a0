package certificate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellocert/internal/cache"
)

// Store guarda registros de certificados emitidos. El token firmado sigue
// siendo la fuente de verdad: perder un registro no invalida nada.
type Store interface {
	Save(ctx context.Context, c *Certificate) error
	Get(ctx context.Context, id string) (*Certificate, error)
	Ping(ctx context.Context) error
}

// CacheStore persiste certificados como JSON sobre un cache.Client (memory|redis).
type CacheStore struct {
	c   cache.Client
	ttl time.Duration
}

// NewCacheStore: ttl 0 hace vivir cada registro hasta la expiración del certificado.
func NewCacheStore(c cache.Client, ttl time.Duration) *CacheStore {
	return &CacheStore{c: c, ttl: ttl}
}

func certKey(id string) string { return "cert:" + id }

func (s *CacheStore) Save(ctx context.Context, c *Certificate) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("certificate store: marshal: %w", err)
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = time.Until(c.ExpiresAt)
	}
	if ttl <= 0 {
		// ya vencido: no hay nada útil que guardar
		return nil
	}
	return s.c.Set(ctx, certKey(c.ID), b, ttl)
}

func (s *CacheStore) Get(ctx context.Context, id string) (*Certificate, error) {
	b, err := s.c.Get(ctx, certKey(id))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var c Certificate
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("certificate store: corrupt record %s: %w", id, err)
	}
	return &c, nil
}

func (s *CacheStore) Ping(ctx context.Context) error { return s.c.Ping(ctx) }
