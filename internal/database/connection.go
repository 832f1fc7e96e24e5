package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/actionsum/focuslog/internal/models"
)

// The tracker mirrors rows while report and index commands read or rebuild,
// so writers wait on the lock instead of failing with SQLITE_BUSY.
const dsnOptions = "?_busy_timeout=5000&_journal_mode=WAL"

// DB is the SQLite index that mirrors the CSV activity log for queries.
type DB struct {
	*gorm.DB
	path string
}

// Connect opens the index at path (config key index.path), creating its
// directory if needed.
func Connect(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("index path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path+dsnOptions), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the file the index lives in.
func (db *DB) Path() string {
	return db.path
}

// Initialize creates or migrates the intervals and error_logs tables.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.Interval{}, &models.ErrorLog{}); err != nil {
		return fmt.Errorf("failed to migrate index schema: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
