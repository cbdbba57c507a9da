package repositories

import (
	"context"
	"errors"

	"tradenexus/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvRepository implements KVRepository on top of GORM (MySQL)
type kvRepository struct {
	db *gorm.DB
}

// NewKVRepository creates a new GORM-backed key-value repository
func NewKVRepository(db *gorm.DB) KVRepository {
	return &kvRepository{db: db}
}

// Get gets a value by scope and key
func (r *kvRepository) Get(ctx context.Context, scope, key string) (string, error) {
	var entry models.KVEntry
	err := r.db.WithContext(ctx).
		Where("scope = ?", scope).
		Where("entry_key = ?", key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return entry.Value, nil
}

// Set creates or replaces a value
func (r *kvRepository) Set(ctx context.Context, scope, key, value string) error {
	entry := &models.KVEntry{
		Scope: scope,
		Key:   key,
		Value: value,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(entry).Error
}

// Delete removes a value; deleting a missing key is not an error
func (r *kvRepository) Delete(ctx context.Context, scope, key string) error {
	return r.db.WithContext(ctx).
		Where("scope = ?", scope).
		Where("entry_key = ?", key).
		Delete(&models.KVEntry{}).Error
}

// DeleteIfValue removes a value only while it is unchanged
func (r *kvRepository) DeleteIfValue(ctx context.Context, scope, key, value string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("scope = ?", scope).
		Where("entry_key = ?", key).
		Where("value = ?", value).
		Delete(&models.KVEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ScopeSize returns the total value bytes stored in a scope
func (r *kvRepository) ScopeSize(ctx context.Context, scope string) (int64, error) {
	var size int64
	err := r.db.WithContext(ctx).
		Model(&models.KVEntry{}).
		Where("scope = ?", scope).
		Select("COALESCE(SUM(LENGTH(value)), 0)").
		Scan(&size).Error
	return size, err
}

// ListByKey lists the entries stored under key across all scopes (sweep jobs)
func (r *kvRepository) ListByKey(ctx context.Context, key string) ([]*models.KVEntry, error) {
	var entries []*models.KVEntry
	err := r.db.WithContext(ctx).
		Where("entry_key = ?", key).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close is a no-op; the connection pool is owned by config.ConnectDatabase
func (r *kvRepository) Close() error {
	return nil
}
