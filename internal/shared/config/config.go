package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	LogLevel      string
	EncryptionKey string
	Bot           BotConfig
	API           APIConfig
	Session       SessionConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Payouts       PayoutsConfig
}

// BotConfig holds the operator bot settings.
type BotConfig struct {
	Token             string
	OperatorIDs       []int64
	SendRatePerSecond float64
	Connection        BotConnectionConfig
}

// BotConnectionConfig selects how updates reach us.
type BotConnectionConfig struct {
	Mode    string // "polling" or "webhook"
	Polling PollingConfig
	Webhook WebhookConfig
}

type PollingConfig struct {
	Timeout int
}

type WebhookConfig struct {
	URL        string
	ListenPort int
}

// APIConfig points at the platform REST backend.
type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	AdminEmail    string
	AdminPassword string
}

// SessionConfig selects where tokens live.
type SessionConfig struct {
	Store     string // "memory", "postgres" or "redis"
	KeyPrefix string
}

type PostgresConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PayoutsConfig tunes the payout console.
type PayoutsConfig struct {
	RefreshInterval  time.Duration
	NotificationTTL  time.Duration
	PageSize         int
	BulkRejectReason string
}

// envBindings maps viper keys to environment variable names.
var envBindings = map[string]string{
	"app.env":                    "APP_ENV",
	"log.level":                  "LOG_LEVEL",
	"encryption.key":             "ENCRYPTION_KEY",
	"bot.token":                  "BOT_TOKEN",
	"bot.operators":              "BOT_OPERATOR_IDS",
	"bot.send_rate":              "BOT_SEND_RATE",
	"bot.mode":                   "BOT_MODE",
	"bot.polling.timeout":        "BOT_POLLING_TIMEOUT",
	"bot.webhook.url":            "BOT_WEBHOOK_URL",
	"bot.webhook.port":           "BOT_WEBHOOK_PORT",
	"api.base_url":               "API_BASE_URL",
	"api.timeout":                "API_TIMEOUT",
	"api.admin_email":            "API_ADMIN_EMAIL",
	"api.admin_password":         "API_ADMIN_PASSWORD",
	"session.store":              "SESSION_STORE",
	"session.key_prefix":         "SESSION_KEY_PREFIX",
	"postgres.url":               "DATABASE_URL",
	"redis.addr":                 "REDIS_ADDR",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"payouts.refresh_interval":   "PAYOUTS_REFRESH_INTERVAL",
	"payouts.notification_ttl":   "PAYOUTS_NOTIFICATION_TTL",
	"payouts.page_size":          "PAYOUTS_PAGE_SIZE",
	"payouts.bulk_reject_reason": "PAYOUTS_BULK_REJECT_REASON",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// 1. Load .env file into the process environment.
	// A missing file is fine, we fall back to OS-set env vars.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// 2. Bind viper keys to env var names
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	// 3. Set defaults
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("bot.send_rate", 20.0)
	viper.SetDefault("bot.mode", "polling")
	viper.SetDefault("bot.polling.timeout", 60)
	viper.SetDefault("bot.webhook.port", 8443)
	viper.SetDefault("api.timeout", 15*time.Second)
	viper.SetDefault("session.store", "memory")
	viper.SetDefault("session.key_prefix", "payoutdesk:")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("payouts.refresh_interval", 30*time.Second)
	viper.SetDefault("payouts.notification_ttl", 5*time.Second)
	viper.SetDefault("payouts.page_size", 10)
	viper.SetDefault("payouts.bulk_reject_reason", "Bulk rejection by admin")

	operators, err := parseOperatorIDs(viper.GetString("bot.operators"))
	if err != nil {
		return nil, err
	}

	// 4. Get values directly from viper
	cfg := Config{
		AppEnv:        viper.GetString("app.env"),
		LogLevel:      viper.GetString("log.level"),
		EncryptionKey: viper.GetString("encryption.key"),
		Bot: BotConfig{
			Token:             viper.GetString("bot.token"),
			OperatorIDs:       operators,
			SendRatePerSecond: viper.GetFloat64("bot.send_rate"),
			Connection: BotConnectionConfig{
				Mode:    viper.GetString("bot.mode"),
				Polling: PollingConfig{Timeout: viper.GetInt("bot.polling.timeout")},
				Webhook: WebhookConfig{
					URL:        viper.GetString("bot.webhook.url"),
					ListenPort: viper.GetInt("bot.webhook.port"),
				},
			},
		},
		API: APIConfig{
			BaseURL:       strings.TrimRight(viper.GetString("api.base_url"), "/"),
			Timeout:       viper.GetDuration("api.timeout"),
			AdminEmail:    viper.GetString("api.admin_email"),
			AdminPassword: viper.GetString("api.admin_password"),
		},
		Session: SessionConfig{
			Store:     strings.ToLower(viper.GetString("session.store")),
			KeyPrefix: viper.GetString("session.key_prefix"),
		},
		Postgres: PostgresConfig{URL: viper.GetString("postgres.url")},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Payouts: PayoutsConfig{
			RefreshInterval:  viper.GetDuration("payouts.refresh_interval"),
			NotificationTTL:  viper.GetDuration("payouts.notification_ttl"),
			PageSize:         viper.GetInt("payouts.page_size"),
			BulkRejectReason: viper.GetString("payouts.bulk_reject_reason"),
		},
	}

	// 5. Validation
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return errors.New("BOT_TOKEN is not set in environment or .env file")
	}
	if len(c.Bot.OperatorIDs) == 0 {
		return errors.New("BOT_OPERATOR_IDS must list at least one Telegram user ID")
	}
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL is not set in environment or .env file")
	}

	switch c.Bot.Connection.Mode {
	case "polling":
	case "webhook":
		if c.Bot.Connection.Webhook.URL == "" {
			return errors.New("BOT_WEBHOOK_URL is required in webhook mode")
		}
	default:
		return fmt.Errorf("unknown BOT_MODE %q (want polling or webhook)", c.Bot.Connection.Mode)
	}

	switch c.Session.Store {
	case "memory":
	case "postgres", "redis":
		if len(c.EncryptionKey) != 64 {
			return fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes) for the %s session store, but got %d chars", c.Session.Store, len(c.EncryptionKey))
		}
		if c.Session.Store == "postgres" && c.Postgres.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres session store")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}

	if c.Payouts.RefreshInterval <= 0 {
		return errors.New("PAYOUTS_REFRESH_INTERVAL must be positive")
	}
	if c.Payouts.PageSize <= 0 {
		return errors.New("PAYOUTS_PAGE_SIZE must be positive")
	}
	return nil
}

// IsOperator reports whether the Telegram user may drive the console.
func (c *Config) IsOperator(telegramID int64) bool {
	for _, id := range c.Bot.OperatorIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func parseOperatorIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid operator id %q in BOT_OPERATOR_IDS: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
