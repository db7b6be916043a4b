package database

import (
	"os"
	"path/filepath"

	"github.com/eyeremote/eyeremote/internal/models"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "events.db"
	defaultDBDir  = ".config/eyeremote"
)

type DB struct {
	*gorm.DB
}

func GetDefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	dbDir := filepath.Join(homeDir, defaultDBDir)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create database directory")
	}

	return filepath.Join(dbDir, defaultDBName), nil
}

// Connect opens the SQLite event store. An empty path selects
// ~/.config/eyeremote/events.db; ":memory:" is accepted for tests.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	return &DB{db}, nil
}

func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.Event{}, &models.ErrorLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
