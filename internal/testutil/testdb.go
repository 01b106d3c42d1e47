package testutil

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-api/internal/config"
	"blog-api/internal/database"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	return database.Open(config.DatabaseConfig{DSN: ":memory:", LogLevel: "silent"}, zap.NewNop())
}
