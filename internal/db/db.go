// Package db opens the console's local store and keeps its schema and seed
// data (profiles, permissions, bootstrap administrator) up to date.
package db

import (
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/payfisc/payfisc-admin/internal/config"
)

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)|(://[^:/]+:)([^@]+)(@)`)

// MaskDSN hides the password of a key=value or URL style DSN.
func MaskDSN(dsn string) string {
	return passwordRe.ReplaceAllStringFunc(dsn, func(m string) string {
		sub := passwordRe.FindStringSubmatch(m)
		if sub[1] != "" {
			return sub[1] + "***"
		}
		return sub[3] + "***" + sub[5]
	})
}

// Open connects with the configured driver. Postgres is retried while the
// server starts.
func Open(cfg config.DatabaseConfig, log *zap.Logger, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}
	dsn := cfg.DSN()

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case "postgres":
		for i := range 5 {
			conn, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Warn("database not ready, retrying", zap.Int("attempt", i+1), zap.Error(err))
			time.Sleep(2 * time.Second)
		}
	case "sqlite", "":
		conn, err = gorm.Open(sqlite.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("db: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(dsn)))
	return conn, nil
}
