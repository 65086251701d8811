package main

import (
	"time"

	"github.com/tinytelemetry/recall/internal/model"
)

const (
	defaultBindHost           = "127.0.0.1"
	defaultAPIPort            = 3000
	defaultQueryTimeout       = model.DefaultQueryTimeout
	defaultDueLimit           = model.DefaultDueLimit
	defaultBackupInterval     = 6 * time.Hour
	defaultBackupKeepLast     = 24
	defaultReviewLogRetention = 0 // days, 0 = keep forever
)

// appConfig is internal runtime configuration.
type appConfig struct {
	DBPath             string        `mapstructure:"db-path"`
	APIPort            int           `mapstructure:"api-port"`
	APIAddr            string        `mapstructure:"api-addr"`
	QueryTimeout       time.Duration `mapstructure:"query-timeout"`
	DueLimit           int           `mapstructure:"due-limit"`
	BackupEnabled      bool          `mapstructure:"backup-enabled"`
	BackupInterval     time.Duration `mapstructure:"backup-interval"`
	BackupLocalDir     string        `mapstructure:"backup-local-dir"`
	BackupKeepLast     int           `mapstructure:"backup-keep-last"`
	ReviewLogRetention int           `mapstructure:"review-log-retention"`
	ConfigPath         string        `mapstructure:"-"` // not from config file
}
