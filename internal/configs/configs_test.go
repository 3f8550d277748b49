package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECURITY_SECRET_KEY", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.AppURL != "127.0.0.1:8080" {
		t.Errorf("unexpected app url %q", cfg.AppURL)
	}
	if cfg.ListLimitDefault != 20 {
		t.Errorf("expected list limit 20, got %d", cfg.ListLimitDefault)
	}
	if cfg.DanglingHoursMax != 24 || cfg.SweepIntervalSeconds != 60 || cfg.SweepLeaseSeconds != 40 {
		t.Errorf("unexpected sweep defaults: %+v", cfg)
	}
	if cfg.AccessTokenExpireSeconds != 604800 {
		t.Errorf("expected a week of token lifetime, got %d", cfg.AccessTokenExpireSeconds)
	}
	if len(cfg.SecretKey) != 64 {
		t.Errorf("expected a generated secret key, got %q", cfg.SecretKey)
	}
	if cfg.MailEnabled() {
		t.Error("expected mail to be disabled without an smtp host")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("SECURITY_SECRET_KEY", "secret")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SMTP_HOST", "smtp.test")
	t.Setenv("SMTP_DO_USE_TLS", "false")
	t.Setenv("TODO_ITEMS_DANGLING_HOURS_MAX", "48")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.AppURL != "0.0.0.0:9000" || cfg.SecretKey != "secret" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "http://b.test" {
		t.Errorf("unexpected cors origins %v", cfg.CORSAllowOrigins)
	}
	if !cfg.MailEnabled() || cfg.SMTPUseTLS {
		t.Errorf("unexpected mail settings: %+v", cfg)
	}
	if cfg.DanglingHoursMax != 48 {
		t.Errorf("expected 48 dangling hours, got %d", cfg.DanglingHoursMax)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"RATE_LIMIT_PER_MINUTE", "abc"},
		{"RATE_LIMIT_PER_MINUTE", "0"},
		{"SWEEP_INTERVAL_SECONDS", "-1"},
		{"SMTP_DO_USE_TLS", "maybe"},
		{"API_LIST_LIMIT_DEFAULT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.InfoLevel,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "json")

	logger.Debug("sweep finished", "overdue", 2)

	out := buf.String()
	if !strings.Contains(out, `"msg":"sweep finished"`) || !strings.Contains(out, `"overdue":2`) {
		t.Errorf("unexpected json log line %q", out)
	}
}

func TestLoad_LeaseMustExpireBeforeNextTick(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL_SECONDS", "30")
	t.Setenv("SWEEP_LEASE_SECONDS", "30")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SWEEP_LEASE_SECONDS") {
		t.Fatalf("expected lease error, got %v", err)
	}

	t.Setenv("SWEEP_LEASE_SECONDS", "20")
	if _, err := Load(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
