package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tradenexus/internal/adapters/persistence/models"
	"tradenexus/internal/core/domain"
)

// quotaRepository enforces a per-scope byte budget on writes,
// the way a browser caps local storage per origin.
type quotaRepository struct {
	inner KVRepository
	limit int64

	mu     sync.Mutex
	scopes map[string]*sync.Mutex
}

// NewQuotaRepository wraps inner with a per-scope limit. A limit <= 0 disables the check.
func NewQuotaRepository(inner KVRepository, limit int64) KVRepository {
	if limit <= 0 {
		return inner
	}
	return &quotaRepository{inner: inner, limit: limit, scopes: make(map[string]*sync.Mutex)}
}

// lockScope serializes writers of one scope and returns the unlock func
func (r *quotaRepository) lockScope(scope string) func() {
	r.mu.Lock()
	m, ok := r.scopes[scope]
	if !ok {
		m = &sync.Mutex{}
		r.scopes[scope] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (r *quotaRepository) Get(ctx context.Context, scope, key string) (string, error) {
	return r.inner.Get(ctx, scope, key)
}

// Set fails with domain.ErrQuotaExceeded when the scope would grow past the limit
func (r *quotaRepository) Set(ctx context.Context, scope, key, value string) error {
	unlock := r.lockScope(scope)
	defer unlock()

	used, err := r.inner.ScopeSize(ctx, scope)
	if err != nil {
		return err
	}
	existing, err := r.inner.Get(ctx, scope, key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}

	next := used - int64(len(existing)) + int64(len(value))
	if next > r.limit {
		return fmt.Errorf("%w: scope %s would use %d of %d bytes", domain.ErrQuotaExceeded, scope, next, r.limit)
	}
	return r.inner.Set(ctx, scope, key, value)
}

func (r *quotaRepository) Delete(ctx context.Context, scope, key string) error {
	unlock := r.lockScope(scope)
	defer unlock()
	return r.inner.Delete(ctx, scope, key)
}

func (r *quotaRepository) DeleteIfValue(ctx context.Context, scope, key, value string) (bool, error) {
	unlock := r.lockScope(scope)
	defer unlock()
	return r.inner.DeleteIfValue(ctx, scope, key, value)
}

func (r *quotaRepository) ScopeSize(ctx context.Context, scope string) (int64, error) {
	return r.inner.ScopeSize(ctx, scope)
}

func (r *quotaRepository) ListByKey(ctx context.Context, key string) ([]*models.KVEntry, error) {
	return r.inner.ListByKey(ctx, key)
}

func (r *quotaRepository) Close() error {
	return r.inner.Close()
}
