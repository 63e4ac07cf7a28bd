package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Development bool
	// API configuration
	APIPort   int
	APIPrefix string
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// InMemory replaces Postgres with the in-process store. Development only.
	InMemory bool

	// Redis configuration, used for the statistics cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Telegram configuration
	TelegramBotToken string
	// TelegramSecretKey is the bot token used to verify mini-app initData.
	// Empty disables verification.
	TelegramSecretKey string
	InitDataMaxAge    time.Duration
	AdminTelegramIDs  []int64

	// Payment providers
	YooKassaShopID         string
	YooKassaSecretKey      string
	YooKassaWebhookSecret  string
	CloudPaymentsPublicID  string
	CloudPaymentsAPISecret string
	PaymentReturnURL       string
	PaymentTimeout         time.Duration

	// e-replika statistics mirror
	EReplikaAPIURL     string
	EReplikaAPIToken   string
	StatisticsCacheTTL time.Duration

	// Web bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	// Background work
	NotifyQueueSize     int
	ExpirySweepInterval time.Duration
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		APIPort:          getEnvAsInt("API_PORT", 8000),
		APIPrefix:        getEnv("API_PREFIX", "/api/v1"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "sadaqa"),
		InMemory:         getEnvAsBool("IN_MEMORY", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramSecretKey: getEnv("TELEGRAM_SECRET_KEY", ""),
		InitDataMaxAge:    time.Duration(getEnvAsInt("INIT_DATA_MAX_AGE_SECONDS", 86400)) * time.Second,
		AdminTelegramIDs:  getEnvAsInt64List("ADMIN_TELEGRAM_IDS"),

		YooKassaShopID:         getEnv("YOOKASSA_SHOP_ID", ""),
		YooKassaSecretKey:      getEnv("YOOKASSA_SECRET_KEY", ""),
		YooKassaWebhookSecret:  getEnv("YOOKASSA_WEBHOOK_SECRET", ""),
		CloudPaymentsPublicID:  getEnv("CLOUDPAYMENTS_PUBLIC_ID", ""),
		CloudPaymentsAPISecret: getEnv("CLOUDPAYMENTS_API_SECRET", ""),
		PaymentReturnURL:       getEnv("PAYMENT_RETURN_URL", "https://t.me/your_bot"),
		PaymentTimeout:         time.Duration(getEnvAsInt("PAYMENT_TIMEOUT_SECONDS", 10)) * time.Second,

		EReplikaAPIURL:     strings.TrimRight(getEnv("E_REPLIKA_API_URL", ""), "/"),
		EReplikaAPIToken:   getEnv("E_REPLIKA_API_TOKEN", ""),
		StatisticsCacheTTL: time.Duration(getEnvAsInt("STATISTICS_CACHE_TTL", 300)) * time.Second,

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPSender:   getEnv("SMTP_SENDER", ""),

		NotifyQueueSize:     getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
		ExpirySweepInterval: time.Duration(getEnvAsInt("EXPIRY_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute,
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if !c.InMemory {
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}

		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	if c.APIPort <= 0 {
		return fmt.Errorf("API_PORT must be positive")
	}

	if c.InMemory && !c.Development {
		return fmt.Errorf("IN_MEMORY storage is only allowed in development mode")
	}

	// initData verification may only be skipped in development.
	if !c.Development && c.TelegramSecretKey == "" {
		return fmt.Errorf("TELEGRAM_SECRET_KEY is required outside development mode")
	}

	if c.NotifyQueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive")
	}

	if c.ExpirySweepInterval <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL_MINUTES must be positive")
	}

	return nil
}

// IsAdmin reports whether the telegram id is on the admin allow-list.
// An empty list admits everyone, but only in development mode.
func (c *Config) IsAdmin(telegramID int64) bool {
	if len(c.AdminTelegramIDs) == 0 {
		return c.Development
	}
	for _, id := range c.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(name string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsInt64List skips entries that are not integers.
func getEnvAsInt64List(name string) []int64 {
	var out []int64
	for _, part := range getEnvAsList(name) {
		if value, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, value)
		}
	}
	return out
}
