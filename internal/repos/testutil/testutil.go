// Package testutil opens a throwaway Postgres connection for repo
// integration tests. Tests skip themselves when TEST_POSTGRES_DSN is unset
// so the suite stays green without a database.
package testutil

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appdb "github.com/talentpulse/assessment-backend/internal/db"
	"github.com/talentpulse/assessment-backend/internal/logger"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping Postgres integration test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		t.Fatalf("create uuid extension: %v", err)
	}
	if err := appdb.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := appdb.EnsureReportIndexes(db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

// Tx hands the test a transaction that is rolled back on cleanup, so tests
// never leak rows into a shared database.
func Tx(t *testing.T, db *gorm.DB) *gorm.DB {
	t.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin test transaction: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}
