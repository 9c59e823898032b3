package main

import (
	"path/filepath"
	"testing"

	"github.com/codr1/mailthemes/internal/db"
)

func TestRunCommands(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	steps := []struct {
		command string
		n       int
		version uint
	}{
		{command: "version", version: 0},
		{command: "up", version: 3},
		{command: "up", version: 3},
		{command: "steps", n: -1, version: 2},
		{command: "down", version: 0},
		{command: "steps", n: 2, version: 2},
		{command: "force", n: 3, version: 3},
	}
	for _, step := range steps {
		if err := run(database, step.command, step.n); err != nil {
			t.Fatalf("%s %d: %v", step.command, step.n, err)
		}
		version, dirty, err := database.MigrationVersion()
		if err != nil || dirty || version != step.version {
			t.Fatalf("after %s %d: version=%d dirty=%t err=%v, want %d", step.command, step.n, version, dirty, err, step.version)
		}
	}

	if err := run(database, "steps", 0); err == nil {
		t.Fatalf("expected steps without -n to fail")
	}
	if err := run(database, "sideways", 0); err == nil {
		t.Fatalf("expected unknown command to fail")
	}
}
