package database

import (
	"path/filepath"
	"strings"
	"testing"

	"chess-progression/internal/config"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "cache.db")}
	db, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", tt.pragma, err)
		}
		if strings.ToLower(got) != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM rating_cache`).Scan(&n); err != nil {
		t.Errorf("rating_cache not migrated: %v", err)
	}
}

func TestNewIsIdempotent(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "cache.db")}
	for i := 0; i < 2; i++ {
		db, err := New(cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("New() run %d error = %v", i+1, err)
		}
		db.Close()
	}
}
