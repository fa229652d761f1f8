package testutil

import (
	"context"
	"testing"

	"github.com/ieraasyl/FavoritesService/internal/database"
	"github.com/ieraasyl/FavoritesService/pkg/config"
)

// NewTestSQLDB opens an in-memory SQLite store with migrations applied.
// Each call gets its own empty database.
func NewTestSQLDB(t *testing.T) *database.SQLDB {
	t.Helper()

	db, err := database.NewSQLDB(&config.DatabaseConfig{URL: "sqlite://:memory:"})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}
