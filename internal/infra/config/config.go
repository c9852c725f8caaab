package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the notification engine.
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	// Postgres pool sizing.
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// ReferenceTimezone is the fixed IANA timezone all business-day math
	// and trigger times are evaluated in.
	ReferenceTimezone string

	CronReminderAM    string
	CronReminderPM    string
	CronFinishedSweep string
	CronAutoStart     string
	CronDailyMessage  string
	CronFriendsDigest string

	// SMTP settings; email sending is disabled when SMTPHost is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Outbound email rate limiting (per recipient).
	EmailRatePerMinute int
	EmailRateBurst     int

	// Ops alerting; disabled when either field is empty/zero.
	TelegramToken string
	OpsChatID     int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.DBMaxOpenConns, err = envOrInt("DB_MAX_OPEN_CONNS", 20)
	if err != nil {
		return nil, err
	}
	cfg.DBMaxIdleConns, err = envOrInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, err
	}
	cfg.DBConnMaxLifetime, err = envOrDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.DBConnMaxIdleTime, err = envOrDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.ReferenceTimezone = os.Getenv("REFERENCE_TIMEZONE")
	if cfg.ReferenceTimezone == "" {
		cfg.ReferenceTimezone = "Asia/Riyadh"
	}

	cfg.CronReminderAM = envOr("CRON_REMINDER_AM", "0 9 * * *")
	cfg.CronReminderPM = envOr("CRON_REMINDER_PM", "0 20 * * *")
	cfg.CronFinishedSweep = envOr("CRON_FINISHED_SWEEP", "30 0 * * *")
	cfg.CronAutoStart = envOr("CRON_AUTO_START", "5 0 * * *")
	cfg.CronDailyMessage = envOr("CRON_DAILY_MESSAGE", "0 12 * * *")
	cfg.CronFriendsDigest = envOr("CRON_FRIENDS_DIGEST", "0 18 * * *")

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		cfg.SMTPPort, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
	} else {
		cfg.SMTPPort = 587
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	cfg.EmailRatePerMinute, err = envOrInt("EMAIL_RATE_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}
	cfg.EmailRateBurst, err = envOrInt("EMAIL_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatStr := os.Getenv("OPS_CHAT_ID"); chatStr != "" {
		cfg.OpsChatID, err = strconv.ParseInt(chatStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPS_CHAT_ID: %w", err)
		}
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envOrDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
