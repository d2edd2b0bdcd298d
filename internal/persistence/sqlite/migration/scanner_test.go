package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestScanMigrations_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_add_attendees.sql":  {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"0001_initial_schema.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"README.md":               {Data: []byte("ignored")},
	}

	migrations, err := NewScannerFS(fsys).ScanMigrations()
	if err != nil {
		t.Fatalf("ScanMigrations failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "0001" || migrations[1].Version != "0002" {
		t.Errorf("unexpected order: %s, %s", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Description != "initial schema" {
		t.Errorf("unexpected description: %q", migrations[0].Description)
	}
	if migrations[0].Checksum == "" {
		t.Error("expected checksum to be populated")
	}
}

func TestScanMigrations_RejectsDuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_first.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"0001_second.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
	}

	_, err := NewScannerFS(fsys).ScanMigrations()
	if !errors.Is(err, ErrDuplicateVersion) {
		t.Fatalf("expected ErrDuplicateVersion, got %v", err)
	}
}

func TestScanMigrations_RejectsBadFileName(t *testing.T) {
	fsys := fstest.MapFS{
		"first-migration.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
	}

	_, err := NewScannerFS(fsys).ScanMigrations()
	if !errors.Is(err, ErrInvalidMigrationFile) {
		t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
	}
}

func TestScanMigrations_RejectsEmptyFile(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_empty.sql": {Data: []byte("   \n")},
	}

	_, err := NewScannerFS(fsys).ScanMigrations()
	if !errors.Is(err, ErrInvalidMigrationFile) {
		t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
	}
}

func TestScanMigrations_Embedded(t *testing.T) {
	migrations, err := NewScanner().ScanMigrations()
	if err != nil {
		t.Fatalf("ScanMigrations failed: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations to be present")
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Errorf("migrations out of order: %s before %s", migrations[i-1].Version, migrations[i].Version)
		}
	}
}
