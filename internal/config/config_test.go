package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HYDROLOG_DATA_DIR", "/tmp/hydrolog-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/hydrolog-test" {
		t.Errorf("unexpected data dir %q", cfg.DataDir)
	}
	if cfg.LogLevel != "warning" {
		t.Errorf("expected default log level warning, got %q", cfg.LogLevel)
	}
	if cfg.ReminderSchedule != "@hourly" {
		t.Errorf("expected default schedule @hourly, got %q", cfg.ReminderSchedule)
	}
	if cfg.LogJSON {
		t.Error("expected text logging by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HYDROLOG_LOG_LEVEL", "debug")
	t.Setenv("HYDROLOG_REMINDER_SCHEDULE", "*/30 * * * *")
	t.Setenv("HYDROLOG_LOG_JSON", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.ReminderSchedule != "*/30 * * * *" || !cfg.LogJSON {
		t.Fatalf("environment overrides not applied: %+v", cfg)
	}
}

func TestNewLogger_Level(t *testing.T) {
	log := NewLogger(Config{LogLevel: "debug"})
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", log.GetLevel())
	}

	// An unparseable level degrades to warn rather than failing startup.
	log = NewLogger(Config{LogLevel: "shouting"})
	if log.GetLevel() != logrus.WarnLevel {
		t.Errorf("expected warn fallback, got %v", log.GetLevel())
	}
}
