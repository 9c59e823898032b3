package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codr1/mailthemes/internal/testutil"
)

func TestSeedEmbeddedThemes(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	created, total, err := seed(ctx, database, "curated", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != total || total == 0 {
		t.Fatalf("seed created %d of %d", created, total)
	}

	created, _, err = seed(ctx, database, "curated", "")
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if created != 0 {
		t.Fatalf("reseed created %d, want 0", created)
	}
}

func TestSeedFromFile(t *testing.T) {
	database := testutil.NewTestDB(t)
	path := filepath.Join(t.TempDir(), "themes.txt")
	if err := os.WriteFile(path, []byte("Night\ndark.background #000000\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	created, total, err := seed(context.Background(), database, "curated", path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != 1 || total != 1 {
		t.Fatalf("seed created %d of %d, want 1 of 1", created, total)
	}

	if _, _, err := seed(context.Background(), database, "curated", filepath.Join(t.TempDir(), "missing.txt")); err == nil || !strings.Contains(err.Error(), "open themes file") {
		t.Fatalf("missing file error = %v", err)
	}
}
