// Package repository persists load-session history for hrdbd.
package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jimyag/hrdb/internal/hrdbd/repository/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required
)

// Repository owns the session-history database.
type Repository struct {
	db *gorm.DB
}

// New opens (creating if necessary) the SQLite database at dbPath and
// migrates the session schema.
func New(dbPath string) (*Repository, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dbPath,
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	if err := db.AutoMigrate(&model.LoadSession{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Repository{db: db}, nil
}

// DB returns the underlying gorm handle, for repositories built on top.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Close releases the underlying database connection.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
