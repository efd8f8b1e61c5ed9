// Package database stores the local crash history.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the process-wide handle opened by Init.
var DB *gorm.DB

// Open connects to the configured database and migrates the schema.
func Open(cfg appconfig.HistoryConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres history requires a dsn")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		dialector = sqlite.Open(cfg.DSN + "?_pragma=busy_timeout(5000)")
	}

	level := gormlogger.Silent
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s history: %w", cfg.Driver, err)
	}
	if err := db.AutoMigrate(&CrashRecord{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return db, nil
}

// Init opens the database and stores it in DB.
func Init(cfg appconfig.HistoryConfig, debug bool) error {
	db, err := Open(cfg, debug)
	if err != nil {
		return err
	}
	DB = db
	logger.Log.Debug().Str("driver", cfg.Driver).Msg("crash history opened")
	return nil
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	DB = nil
}
