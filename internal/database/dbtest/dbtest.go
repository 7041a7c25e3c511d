// Package dbtest opens throwaway SQLite databases migrated with the
// production models. Import it from tests only.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/nexcodes/softec-25-sub000/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated database that lives for the duration of the test
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "crimewatch.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), database.GormConfig())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// SQLite allows one writer; a single connection serializes test goroutines
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
