package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RateLimit              int
	RedisAddr              string
	RedisSweepLeaseKey     string
	ShutdownTimeoutSeconds int
	CORSAllowOrigins       []string

	LogLevel  string
	LogFormat string

	ListLimitDefault int

	DanglingHoursMax     int
	SweepIntervalSeconds int
	SweepLeaseSeconds    int

	SecretKey                string
	AccessTokenExpireSeconds int

	EmailFromEmail string
	EmailFromName  string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	SMTPUseTLS     bool
	MailWorkers    int
	MailQueueSize  int
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")

	secretKey := getEnv("SECURITY_SECRET_KEY", "")
	if secretKey == "" {
		generated, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		secretKey = generated
	}

	var errs []error
	intEnv := func(key string, defaultVal int) int {
		v, err := getEnvAsInt(key, defaultVal)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolEnv := func(key string, defaultVal bool) bool {
		v, err := getEnvAsBool(key, defaultVal)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := Config{
		AppURL:                   fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:              getEnv("DATABASE_DSN", "todo_items.db"),
		RateLimit:                intEnv("RATE_LIMIT_PER_MINUTE", 120),
		RedisAddr:                getEnv("REDIS_ADDR", ""),
		RedisSweepLeaseKey:       getEnv("REDIS_SWEEP_LEASE_KEY", "todo_items:sweep_lease"),
		ShutdownTimeoutSeconds:   intEnv("SHUTDOWN_TIMEOUT_SECONDS", 20),
		CORSAllowOrigins:         getEnvAsList("CORS_ALLOW_ORIGINS"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "text"),
		ListLimitDefault:         intEnv("API_LIST_LIMIT_DEFAULT", 20),
		DanglingHoursMax:         intEnv("TODO_ITEMS_DANGLING_HOURS_MAX", 24),
		SweepIntervalSeconds:     intEnv("SWEEP_INTERVAL_SECONDS", 60),
		SweepLeaseSeconds:        intEnv("SWEEP_LEASE_SECONDS", 40),
		SecretKey:                secretKey,
		AccessTokenExpireSeconds: intEnv("SECURITY_ACCESS_TOKEN_EXPIRE_SECONDS", 7*24*60*60),
		EmailFromEmail:           getEnv("EMAIL_FROM_EMAIL", "noreply@todo-items.local"),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Todo Items"),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 intEnv("SMTP_PORT", 587),
		SMTPUser:                 getEnv("SMTP_USER", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:               boolEnv("SMTP_DO_USE_TLS", true),
		MailWorkers:              intEnv("MAIL_WORKERS", 2),
		MailQueueSize:            intEnv("MAIL_QUEUE_SIZE", 100),
	}

	if len(errs) > 0 {
		return Config{}, errs[0]
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func validate(cfg Config) error {
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.ListLimitDefault <= 0 {
		return fmt.Errorf("API_LIST_LIMIT_DEFAULT must be greater than 0")
	}
	if cfg.DanglingHoursMax <= 0 {
		return fmt.Errorf("TODO_ITEMS_DANGLING_HOURS_MAX must be greater than 0")
	}
	if cfg.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL_SECONDS must be greater than 0")
	}
	if cfg.SweepLeaseSeconds <= 0 {
		return fmt.Errorf("SWEEP_LEASE_SECONDS must be greater than 0")
	}
	if cfg.SweepLeaseSeconds >= cfg.SweepIntervalSeconds {
		return fmt.Errorf("SWEEP_LEASE_SECONDS must be less than SWEEP_INTERVAL_SECONDS")
	}
	if cfg.AccessTokenExpireSeconds <= 0 {
		return fmt.Errorf("SECURITY_ACCESS_TOKEN_EXPIRE_SECONDS must be greater than 0")
	}
	if cfg.SMTPPort <= 0 {
		return fmt.Errorf("SMTP_PORT must be greater than 0")
	}
	if cfg.MailWorkers <= 0 {
		return fmt.Errorf("MAIL_WORKERS must be greater than 0")
	}
	if cfg.MailQueueSize <= 0 {
		return fmt.Errorf("MAIL_QUEUE_SIZE must be greater than 0")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean value for %s", key)
		}
		return b, nil
	}
	return defaultVal, nil
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
