package services

import (
	"context"
	"encoding/json"
	"errors"

	"tradenexus/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
)

// Keys of the browser-scoped key-value area
const (
	KeyAuthToken     = "tradenexus_auth_token"
	KeyUserData      = "tradenexus_user_data"
	KeyLogo          = "tradenexus_logo_v1"
	KeyIllustrations = "tradenexus_illustrations"
)

// profileStorage reads and writes one profile's key-value area.
// Reads never fail: a missing, unreadable or corrupt value reads as absent.
type profileStorage struct {
	repo repositories.KVRepository
	log  *zap.Logger
}

func (p profileStorage) getString(ctx context.Context, profileID, key string) (string, bool) {
	value, err := p.repo.Get(ctx, profileID, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrKeyNotFound) {
			p.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// getJSON decodes the value under key into dst and reports whether it was usable
func (p profileStorage) getJSON(ctx context.Context, profileID, key string, dst any) bool {
	raw, ok := p.getString(ctx, profileID, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		p.log.Debug("ignoring corrupt stored value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (p profileStorage) setJSON(ctx context.Context, profileID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.repo.Set(ctx, profileID, key, string(raw))
}

// attempt runs a best-effort write. Failures such as a full quota are
// logged and swallowed; the in-memory result stays valid.
func (p profileStorage) attempt(key string, err error) {
	if err != nil {
		p.log.Warn("skipping persistence", zap.String("key", key), zap.Error(err))
	}
}

func (p profileStorage) delete(ctx context.Context, profileID, key string) error {
	return p.repo.Delete(ctx, profileID, key)
}
