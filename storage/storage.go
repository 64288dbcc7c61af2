package storage

import (
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"taskboard-api/domain"
)

// Store provides access to the relational persistence layer. Methods are
// grouped by aggregate in the other files of this package.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn and runs migrations.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "taskboard.db"
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := gormlog.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		gormlog.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlog.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open gorm connection. Intended for tests.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Task{},
		&domain.Tag{},
		&domain.TaskTag{},
		&domain.Notification{},
		&domain.ActivityEntry{},
	)
	if err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// ensureDirForSQLite creates the parent dir for the SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
