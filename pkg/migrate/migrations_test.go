package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestMigrationsDirValidates(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestMigrationsCoverSchema(t *testing.T) {
	tables := []string{
		"blog_posts",
		"blog_comments",
		"blog_likes",
		"photos",
		"group_sessions",
		"player_signups",
		"parents",
		"players",
		"crm_parents",
		"crm_players",
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var all strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		all.Write(b)
	}

	sql := all.String()
	for _, table := range tables {
		if !strings.Contains(sql, "CREATE TABLE "+table) {
			t.Fatalf("no migration creates table %q", table)
		}
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for invalid filename")
	}
}
