// Package config loads hydrolog's runtime configuration from the
// environment and constructs the process logger.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything tunable from the environment. CLI flags
// override individual fields after Load.
type Config struct {
	DataDir          string `env:"HYDROLOG_DATA_DIR"`
	LogLevel         string `env:"HYDROLOG_LOG_LEVEL,default=warning"`
	LogJSON          bool   `env:"HYDROLOG_LOG_JSON,default=false"`
	ReminderSchedule string `env:"HYDROLOG_REMINDER_SCHEDULE,default=@hourly"`
}

// Load reads an optional .env file, then decodes the environment.
// A missing .env is fine; a malformed environment value is not.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, nil
}

// defaultDataDir prefers a repo-local .hydrolog directory when one
// already exists, then falls back to the user home.
func defaultDataDir() string {
	cwd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(cwd, ".hydrolog")
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".hydrolog"
	}
	return filepath.Join(home, ".hydrolog")
}

// NewLogger builds the process logger from the config.
func NewLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
	return log
}
