package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the migrate database drivers and file source.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the store and ensures the kv_entries table exists.
// A postgres:// DSN selects the postgres driver (hosted setups); any
// other DSN is treated as a sqlite file path, the offline default.
// With MIGRATIONS=1|true|yes the SQL migrations in ./migrations run via
// golang-migrate; otherwise AutoMigrate keeps the schema current.
func Open(dsn string) (*KV, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty DSN, check DATABASE_DSN")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if isPostgres(dsn) {
		// Remote DB may still be starting; retry briefly.
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			time.Sleep(2 * time.Second)
		}
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("store ping failed: %w", pingErr)
	}

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := db.AutoMigrate(&Entry{}); err != nil {
			return nil, fmt.Errorf("automigrate kv_entries: %w", err)
		}
	}
	if !db.Migrator().HasTable("kv_entries") {
		return nil, fmt.Errorf("missing table after migration: kv_entries")
	}
	return New(db), nil
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source. sqlite paths are rewritten to the
// sqlite3:// URL form the library expects.
func runSQLMigrations(dsn string) error {
	url := dsn
	if !isPostgres(dsn) {
		url = "sqlite3://" + dsn
	}
	m, err := migrate.New("file://migrations", url)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
