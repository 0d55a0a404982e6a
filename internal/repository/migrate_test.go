package repository

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsFS_Pairs(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(MigrationsFS(), "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}

	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for version := range ups {
		if !downs[version] {
			t.Errorf("migration %s has no down file", version)
		}
	}
}

func TestMigrationsFS_EmailIsUnique(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(MigrationsFS(), "migrations/000001_users.up.sql")
	if err != nil {
		t.Fatalf("read users migration: %v", err)
	}
	if !strings.Contains(string(data), emailConstraint+" UNIQUE (email)") {
		t.Errorf("users migration must declare %s", emailConstraint)
	}
}
