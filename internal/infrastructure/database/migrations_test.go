package database

import (
	"context"
	"embed"
	"io/fs"
	"testing"
	"testing/fstest"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// probeMigrations is a two-step schema: create probe, then add a column.
func probeMigrations(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(testMigrationsFS, "testdata")
	if err != nil {
		t.Fatalf("fs.Sub() error = %v", err)
	}
	return sub
}

func tableExists(t *testing.T, db *DB, table string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master query error = %v", err)
	}
	return n == 1
}

func TestMigrate_AppliesInOrderOnce(t *testing.T) {
	db := openTestDB(t).WithMigrations(probeMigrations(t))
	ctx := context.Background()

	for i := range 2 {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+1, err)
		}
	}

	// note only exists if the second step ran after the first
	if _, err := db.ExecContext(ctx, "INSERT INTO probe (label, note) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("insert into migrated table error = %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
	want := []string{"20260101_000000", "20260102_000000"}
	if len(applied) != len(want) {
		t.Fatalf("applied = %d, want %d", len(applied), len(want))
	}
	for i, v := range want {
		if applied[i].Version != v {
			t.Errorf("applied[%d].Version = %q, want %q", i, applied[i].Version, v)
		}
		if applied[i].AppliedAt.IsZero() {
			t.Errorf("applied[%d].AppliedAt is zero", i)
		}
	}
}

func TestMigrate_ReadingsSchema(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "readings") {
		t.Error("readings table not created")
	}
}

func TestMigrate_FailedStepResumes(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101_000000_ok.up.sql":     {Data: []byte("CREATE TABLE first (id INTEGER)")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE nope (")},
	}
	db := openTestDB(t).WithMigrations(fsys)
	ctx := context.Background()

	if err := db.Migrate(ctx); err == nil {
		t.Fatal("Migrate() error = nil, want syntax error")
	}
	if !tableExists(t, db, "first") {
		t.Error("step before the failure was not committed")
	}

	fsys["20260102_000000_broken.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE second (id INTEGER)")}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() after fix error = %v", err)
	}
	if !tableExists(t, db, "second") {
		t.Error("fixed step was not applied")
	}
}

func TestMigrationStatus_Fresh(t *testing.T) {
	tests := []struct {
		name        string
		fsys        fs.FS
		wantPending int
	}{
		{name: "probe set", fsys: probeMigrations(t), wantPending: 2},
		{name: "empty", fsys: fstest.MapFS{}, wantPending: 0},
		{name: "nil source", fsys: nil, wantPending: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t).WithMigrations(tt.fsys)
			applied, pending, err := db.MigrationStatus(context.Background())
			if err != nil {
				t.Fatalf("MigrationStatus() error = %v", err)
			}
			if len(applied) != 0 {
				t.Errorf("applied = %d, want 0", len(applied))
			}
			if len(pending) != tt.wantPending {
				t.Errorf("pending = %d, want %d", len(pending), tt.wantPending)
			}
		})
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		file        string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{"20261016_090000_readings.up.sql", "20261016_090000", "readings", true},
		{"20261101_120000_add_unit_to_readings.up.sql", "20261101_120000", "add_unit_to_readings", true},
		{"20261016_090000_readings.down.sql", "", "", false},
		{"20261016_090000_readings.sql", "", "", false},
		{"20261016_090000.up.sql", "", "", false},
		{"2026_090000_readings.up.sql", "", "", false},
		{"readme.txt", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.file)
			if ok != tt.wantOK || version != tt.wantVersion || name != tt.wantName {
				t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.file, version, name, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
