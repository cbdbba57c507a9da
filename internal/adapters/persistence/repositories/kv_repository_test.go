package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tradenexus/internal/adapters/persistence/models"
	"tradenexus/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newGormTestDB opens a migrated GORM database on a modernc SQLite file
func newGormTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "gorm.db"))
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func kvImplementations(t *testing.T) map[string]KVRepository {
	t.Helper()
	sqliteRepo, err := NewSQLiteKVRepository(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteRepo.Close() })

	return map[string]KVRepository{
		"memory": NewMemoryKVRepository(),
		"sqlite": sqliteRepo,
		"gorm":   NewKVRepository(newGormTestDB(t)),
	}
}

func TestKVRepository_Contract(t *testing.T) {
	ctx := context.Background()

	for name, repo := range kvImplementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(ctx, "profile-a", "missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, repo.Set(ctx, "profile-a", "token", `{"userId":"1"}`))
			require.NoError(t, repo.Set(ctx, "profile-b", "token", `{"userId":"2"}`))

			got, err := repo.Get(ctx, "profile-a", "token")
			require.NoError(t, err)
			assert.Equal(t, `{"userId":"1"}`, got)

			// overwrite replaces in place
			require.NoError(t, repo.Set(ctx, "profile-a", "token", `{"userId":"3"}`))
			got, err = repo.Get(ctx, "profile-a", "token")
			require.NoError(t, err)
			assert.Equal(t, `{"userId":"3"}`, got)

			size, err := repo.ScopeSize(ctx, "profile-a")
			require.NoError(t, err)
			assert.Equal(t, int64(len(`{"userId":"3"}`)), size)

			entries, err := repo.ListByKey(ctx, "token")
			require.NoError(t, err)
			assert.Len(t, entries, 2)

			require.NoError(t, repo.Delete(ctx, "profile-a", "token"))
			_, err = repo.Get(ctx, "profile-a", "token")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			// deleting twice is fine
			assert.NoError(t, repo.Delete(ctx, "profile-a", "token"))

			got, err = repo.Get(ctx, "profile-b", "token")
			require.NoError(t, err)
			assert.Equal(t, `{"userId":"2"}`, got)

			// compare-and-delete leaves a replaced value alone
			deleted, err := repo.DeleteIfValue(ctx, "profile-b", "token", `{"userId":"stale"}`)
			require.NoError(t, err)
			assert.False(t, deleted)
			deleted, err = repo.DeleteIfValue(ctx, "profile-b", "token", `{"userId":"2"}`)
			require.NoError(t, err)
			assert.True(t, deleted)
			_, err = repo.Get(ctx, "profile-b", "token")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			deleted, err = repo.DeleteIfValue(ctx, "profile-b", "token", `{"userId":"2"}`)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestQuotaRepository_Set(t *testing.T) {
	ctx := context.Background()
	repo := NewQuotaRepository(NewMemoryKVRepository(), 10)

	require.NoError(t, repo.Set(ctx, "p", "a", "12345"))
	require.NoError(t, repo.Set(ctx, "p", "b", "12345"))

	err := repo.Set(ctx, "p", "c", "1")
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	// replacing a value only counts the difference
	assert.NoError(t, repo.Set(ctx, "p", "a", "abcde"))
	assert.ErrorIs(t, repo.Set(ctx, "p", "a", "abcdef"), domain.ErrQuotaExceeded)

	// other scopes have their own budget
	assert.NoError(t, repo.Set(ctx, "q", "a", strings.Repeat("x", 10)))
}

func TestQuotaRepository_ConcurrentSetsStayWithinLimit(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKVRepository()
	repo := NewQuotaRepository(inner, 10)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Set(ctx, "p", string(rune('a'+i%26))+string(rune('A'+i/26)), "x")
		}(i)
	}
	wg.Wait()

	size, err := inner.ScopeSize(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
}

func TestNewQuotaRepository_DisabledLimit(t *testing.T) {
	inner := NewMemoryKVRepository()
	assert.Same(t, inner, NewQuotaRepository(inner, 0))
}
