package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Browser-scoped key-value area
// ============================================================

// KVEntry represents kv_entries table.
// Scope is the browser profile id, Key the storage key inside that profile.
type KVEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Scope     string    `gorm:"column:scope;size:64;not null;uniqueIndex:idx_kv_scope_key" json:"scope"`
	Key       string    `gorm:"column:entry_key;size:100;not null;uniqueIndex:idx_kv_scope_key;index" json:"key"`
	Value     string    `gorm:"column:value;type:longtext" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// AutoMigrate runs auto migration for the tables owned by this service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&KVEntry{},
	)
}
