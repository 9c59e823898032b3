package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/mailthemes/internal/db"
	dbgen "github.com/codr1/mailthemes/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedConnection inserts a mail connection owned by userID.
func SeedConnection(t *testing.T, database *db.DB, id, userID string) {
	t.Helper()

	err := database.Queries.CreateConnection(context.Background(), dbgen.CreateConnectionParams{
		ID:         id,
		UserID:     userID,
		Email:      id + "@example.com",
		ProviderID: "google",
	})
	if err != nil {
		t.Fatalf("seed connection %s: %v", id, err)
	}
}
