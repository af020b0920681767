package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Admin Config
	AdminUsername   string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword   string        `env:"ADMIN_PASSWORD"`
	AdminAllowedIPs []string      `env:"ADMIN_ALLOWED_IPS" envDefault:"127.0.0.1"`
	AdminRateLimit  int           `env:"ADMIN_RATE_LIMIT" envDefault:"5"`
	AdminRatePeriod time.Duration `env:"ADMIN_RATE_PERIOD" envDefault:"60s"`

	// Submission Config
	SubmitRateLimit  int           `env:"SUBMIT_RATE_LIMIT" envDefault:"3"`
	SubmitRatePeriod time.Duration `env:"SUBMIT_RATE_PERIOD" envDefault:"1h"`

	// Encryption Config: упорядоченный список пар id:secret, новейший ключ последним
	EncryptionKeys []string `env:"ENCRYPTION_KEYS"`

	// Session Config
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Audit Webhook Config
	AuditWebhookURL     string        `env:"AUDIT_WEBHOOK_URL"`
	AuditWebhookSecret  string        `env:"AUDIT_WEBHOOK_SECRET"`
	AuditWebhookTimeout time.Duration `env:"AUDIT_WEBHOOK_TIMEOUT" envDefault:"5s"`
	AuditMaxRetries     int           `env:"AUDIT_MAX_RETRIES" envDefault:"3"`
	AuditBaseDelay      time.Duration `env:"AUDIT_BASE_DELAY" envDefault:"1s"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		AdminAllowedIPs:     getEnvAsList("ADMIN_ALLOWED_IPS", []string{"127.0.0.1"}),
		AdminRateLimit:      getEnvAsInt("ADMIN_RATE_LIMIT", 5),
		AdminRatePeriod:     getEnvAsDuration("ADMIN_RATE_PERIOD", 60*time.Second),
		SubmitRateLimit:     getEnvAsInt("SUBMIT_RATE_LIMIT", 3),
		SubmitRatePeriod:    getEnvAsDuration("SUBMIT_RATE_PERIOD", time.Hour),
		EncryptionKeys:      getEnvAsList("ENCRYPTION_KEYS", nil),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionTTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		AuditWebhookURL:     os.Getenv("AUDIT_WEBHOOK_URL"),
		AuditWebhookSecret:  os.Getenv("AUDIT_WEBHOOK_SECRET"),
		AuditWebhookTimeout: getEnvAsDuration("AUDIT_WEBHOOK_TIMEOUT", 5*time.Second),
		AuditMaxRetries:     getEnvAsInt("AUDIT_MAX_RETRIES", 3),
		AuditBaseDelay:      getEnvAsDuration("AUDIT_BASE_DELAY", time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD environment variable is required")
	}
	if len(cfg.EncryptionKeys) == 0 {
		return nil, fmt.Errorf("ENCRYPTION_KEYS environment variable is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList возвращает значение переменной окружения как список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	items := strings.Split(value, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}
