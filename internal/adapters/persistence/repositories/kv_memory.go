package repositories

import (
	"context"
	"sort"
	"sync"

	"tradenexus/internal/adapters/persistence/models"
)

// memoryKVRepository keeps everything in process memory.
// Used by tests and by STORAGE_DRIVER=memory.
type memoryKVRepository struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// NewMemoryKVRepository creates an empty in-memory repository
func NewMemoryKVRepository() KVRepository {
	return &memoryKVRepository{scopes: make(map[string]map[string]string)}
}

func (r *memoryKVRepository) Get(_ context.Context, scope, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.scopes[scope][key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (r *memoryKVRepository) Set(_ context.Context, scope, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.scopes[scope]
	if !ok {
		entries = make(map[string]string)
		r.scopes[scope] = entries
	}
	entries[key] = value
	return nil
}

func (r *memoryKVRepository) Delete(_ context.Context, scope, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scopes[scope], key)
	if len(r.scopes[scope]) == 0 {
		delete(r.scopes, scope)
	}
	return nil
}

func (r *memoryKVRepository) DeleteIfValue(_ context.Context, scope, key, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.scopes[scope][key]; !ok || current != value {
		return false, nil
	}
	delete(r.scopes[scope], key)
	if len(r.scopes[scope]) == 0 {
		delete(r.scopes, scope)
	}
	return true, nil
}

func (r *memoryKVRepository) ScopeSize(_ context.Context, scope string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var size int64
	for _, value := range r.scopes[scope] {
		size += int64(len(value))
	}
	return size, nil
}

func (r *memoryKVRepository) ListByKey(_ context.Context, key string) ([]*models.KVEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []*models.KVEntry
	for scope, values := range r.scopes {
		if value, ok := values[key]; ok {
			entries = append(entries, &models.KVEntry{Scope: scope, Key: key, Value: value})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Scope < entries[j].Scope })
	return entries, nil
}

func (r *memoryKVRepository) Close() error {
	return nil
}
