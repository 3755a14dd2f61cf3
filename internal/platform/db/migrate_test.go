package db

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_SortOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"010_indexes.sql":       {Data: []byte("SELECT 10;")},
		"002_questionnaire.sql": {Data: []byte("SELECT 2;")},
		"001_patients.sql":      {Data: []byte("SELECT 1;")},
		"005_legacy.sql":        {Data: []byte("SELECT 5;")},
	}

	migrations, err := NewMigrator(nil, fsys).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 4 {
		t.Fatalf("expected 4 migrations, got %d", len(migrations))
	}

	expected := []int{1, 2, 5, 10}
	for i, v := range expected {
		if migrations[i].Version != v {
			t.Errorf("migration[%d]: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
	if migrations[0].Name != "001_patients.sql" || migrations[0].SQL != "SELECT 1;" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
}

func TestLoadMigrations_SkipsInvalidNames(t *testing.T) {
	fsys := fstest.MapFS{
		"001_valid.sql":      {Data: []byte("SELECT 1;")},
		"readme.sql":         {Data: []byte("-- no version prefix")},
		"notes.txt":          {Data: []byte("not sql")},
		"abc_invalid.sql":    {Data: []byte("-- non-numeric prefix")},
		"002_also_valid.sql": {Data: []byte("SELECT 2;")},
	}

	migrations, err := NewMigrator(nil, fsys).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 valid migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("unexpected versions %d, %d", migrations[0].Version, migrations[1].Version)
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := NewMigrator(nil, fsys).LoadMigrations(); err == nil {
		t.Error("expected error for duplicate migration version")
	}
}

func TestLoadMigrations_Empty(t *testing.T) {
	migrations, err := NewMigrator(nil, fstest.MapFS{}).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected 0 migrations, got %d", len(migrations))
	}
}

func TestLoadMigrations_DirFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_core.sql"), []byte("SELECT 1;"), 0644); err != nil {
		t.Fatalf("write migration: %v", err)
	}

	migrations, err := NewMigrator(nil, os.DirFS(dir)).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	_, err := NewMigrator(nil, os.DirFS("/nonexistent/migrations")).LoadMigrations()
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}
