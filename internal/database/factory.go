package database

import (
	"fmt"
	"os"
	"path/filepath"

	"mealplan-go/internal/config"
)

// NewDatabaseFromConfig opens the store selected by cfg. File databases are
// named after the profile so several profiles can share a data directory.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, profileID string) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, profileID+".db"))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
