package db

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/corequote/corequote/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	connectAttempts = 10
	retryDelay      = 2 * time.Second
)

var passwordPattern = regexp.MustCompile(`(password=|://[^:/@]+:)([^\s@]+)`)

// Open connects to the configured database, retrying while Postgres starts.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var dialector gorm.Dialector
	attempts := connectAttempts
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.SQLitePath)
		attempts = 1
		log.Printf("Connecting to sqlite database: %s", cfg.SQLitePath)
	} else {
		dialector = postgres.Open(cfg.DSN())
		log.Printf("Connecting to database: %s", maskDSN(cfg.DSN()))
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Printf("Database connection attempt %d/%d failed: %v", i+1, attempts, err)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.IsSQLite() {
		// sqlite allows a single writer; one connection also keeps
		// in-memory databases alive and shared.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxConnAge > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnAge) * time.Second)
	}

	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return conn, nil
}

func maskDSN(dsn string) string {
	return passwordPattern.ReplaceAllString(dsn, "${1}***")
}
