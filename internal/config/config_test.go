package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:                "8081",
		SQLiteDBPath:        "./data/test.db",
		SessionTimeout:      10 * time.Minute,
		SweepInterval:       time.Minute,
		AMQPExchange:        "despesas",
		AMQPQueue:           "report_exports",
		CSVDelimiter:        ';',
		CSVDecimalSeparator: ',',
		RateLimitPerMinute:  120,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.SessionTimeout != 10*time.Minute {
		t.Errorf("SessionTimeout = %v, want 10m", cfg.SessionTimeout)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("SweepInterval = %v, want 1m", cfg.SweepInterval)
	}
	if cfg.CSVDelimiter != ';' {
		t.Errorf("CSVDelimiter = %q, want ';'", cfg.CSVDelimiter)
	}
	if cfg.CSVDecimalSeparator != ',' {
		t.Errorf("CSVDecimalSeparator = %q, want ','", cfg.CSVDecimalSeparator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TIMEOUT", "5m")
	t.Setenv("CSV_DELIMITER", ",")
	t.Setenv("CSV_DECIMAL_SEPARATOR", ".")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SessionTimeout != 5*time.Minute {
		t.Errorf("SessionTimeout = %v, want 5m", cfg.SessionTimeout)
	}
	if cfg.CSVDelimiter != ',' {
		t.Errorf("CSVDelimiter = %q, want ','", cfg.CSVDelimiter)
	}
	if cfg.CSVDecimalSeparator != '.' {
		t.Errorf("CSVDecimalSeparator = %q, want '.'", cfg.CSVDecimalSeparator)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("RateLimitPerMinute = %d, want 30", cfg.RateLimitPerMinute)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = "abc" },
			wantMsg: "invalid port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantMsg: "must be between",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.SQLiteDBPath = "" },
			wantMsg: "database path",
		},
		{
			name:    "session timeout too small",
			mutate:  func(c *Config) { c.SessionTimeout = time.Millisecond },
			wantMsg: "session timeout",
		},
		{
			name:    "sweep interval too large",
			mutate:  func(c *Config) { c.SweepInterval = 48 * time.Hour },
			wantMsg: "sweep interval",
		},
		{
			name:    "bad AMQP scheme",
			mutate:  func(c *Config) { c.AMQPURL = "http://localhost" },
			wantMsg: "AMQP URL scheme",
		},
		{
			name:    "AMQP queue required with URL",
			mutate:  func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" },
			wantMsg: "queue name",
		},
		{
			name:    "delimiter equals decimal separator",
			mutate:  func(c *Config) { c.CSVDecimalSeparator = ';' },
			wantMsg: "cannot both be",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimitPerMinute = 0 },
			wantMsg: "rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}
