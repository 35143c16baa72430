// Package testutil holds database helpers shared by service tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a migrated in-memory database with a single connection.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, "file::memory:", 1)
}

// NewFileSQLiteDB opens a migrated database file in a temp dir, shared by
// several connections. Concurrency tests use it so that goroutines really
// hold separate transactions.
func NewFileSQLiteDB(t testing.TB, maxConns int) *gorm.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "bakery.db"), maxConns)
}

func open(t testing.TB, path string, maxConns int) *gorm.DB {
	database, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         path,
		MaxOpenConns: maxConns,
		MaxIdleConns: maxConns,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}
