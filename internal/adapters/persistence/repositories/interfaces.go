package repositories

import (
	"context"
	"errors"

	"tradenexus/internal/adapters/persistence/models"
)

// ErrKeyNotFound is returned by Get when the scope has no value for the key
var ErrKeyNotFound = errors.New("key not found")

// KVRepository defines the browser-scoped key-value area.
// Values are opaque strings (JSON documents or data URIs).
type KVRepository interface {
	Get(ctx context.Context, scope, key string) (string, error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope, key string) error
	// DeleteIfValue removes the entry only while it still holds value
	DeleteIfValue(ctx context.Context, scope, key, value string) (bool, error)
	ScopeSize(ctx context.Context, scope string) (int64, error)
	ListByKey(ctx context.Context, key string) ([]*models.KVEntry, error)
	Close() error
}
