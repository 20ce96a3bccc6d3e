package data

import (
	"log"
	"time"

	"github.com/cryptiklemur/discordarr/src/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectSQLite opens the file-backed request store. The service is single
// instance, so one sqlite writer with a busy timeout is all the coordination
// needed.
func ConnectSQLite(path string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{SlowThreshold: time.Second, LogLevel: logger.Warn, IgnoreRecordNotFoundError: true, Colorful: false},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA busy_timeout = 5000")
	db.Exec("PRAGMA synchronous = NORMAL")

	return db, nil
}

// Migrate creates the request tables. Failures here are fatal to startup;
// everything after this treats the store as available.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&types.PendingRequest{}, &types.TrackedRequest{})
}
