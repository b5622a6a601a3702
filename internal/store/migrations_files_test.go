package store

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/Kutay07/ContentLab-sub000/db"
)

func TestMigrationsHaveMatchingUpAndDownFiles(t *testing.T) {
	migrationsDir := filepath.Join("..", "..", "db", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	pattern := regexp.MustCompile(`^(\d+)_.*\.(up|down)\.sql$`)
	byVersion := map[string]map[string]bool{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, direction := match[1], match[2]
		if byVersion[version] == nil {
			byVersion[version] = map[string]bool{}
		}
		if byVersion[version][direction] {
			t.Fatalf("duplicate %s migration file for version %s", direction, version)
		}
		byVersion[version][direction] = true
	}

	if len(byVersion) == 0 {
		t.Fatal("no migrations discovered")
	}
	for version, dirs := range byVersion {
		if !dirs["up"] || !dirs["down"] {
			t.Fatalf("version %s must include both up and down files", version)
		}
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	embedded, err := migrationFiles(db.Migrations, ".up.sql")
	if err != nil {
		t.Fatalf("list embedded migrations: %v", err)
	}
	onDisk, err := migrationFiles(os.DirFS(filepath.Join("..", "..", "db", "migrations")), ".up.sql")
	if err != nil {
		t.Fatalf("list disk migrations: %v", err)
	}
	if len(embedded) != len(onDisk) || len(embedded) == 0 {
		t.Fatalf("embedded %d migrations, disk has %d", len(embedded), len(onDisk))
	}
	for i := range embedded {
		if filepath.Base(embedded[i]) != filepath.Base(onDisk[i]) {
			t.Fatalf("migration %d: embedded %s, disk %s", i, embedded[i], onDisk[i])
		}
	}
}
