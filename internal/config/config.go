// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"shopbot/pkg/db"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// PaymentConfig configures the payment provider.
type PaymentConfig struct {
	BaseURL  string
	Receiver string
	Token    string
}

// ReconcileConfig configures the reconciliation worker.
type ReconcileConfig struct {
	Interval       time.Duration
	ConfirmTimeout time.Duration
	Concurrency    int
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort      string
	LogLevel        string
	TelegramToken   string
	AdminToken      string
	CatalogPageSize int
	DB              db.Config
	Payment         PaymentConfig
	Reconcile       ReconcileConfig
}

var defaults = map[string]interface{}{
	"SERVER_PORT":           "8080",
	"LOG_LEVEL":             "info",
	"DB_HOST":               "localhost",
	"DB_PORT":               5432,
	"DB_USER":               "user",
	"DB_PASSWORD":           "password",
	"DB_NAME":               "shopbot",
	"DB_SSLMODE":            "disable",
	"YOOMONEY_BASE_URL":     "https://yoomoney.ru",
	"YOOMONEY_RECEIVER":     "",
	"YOOMONEY_TOKEN":        "",
	"TELEGRAM_BOT_TOKEN":    "",
	"ADMIN_TOKEN":           "",
	"CATALOG_PAGE_SIZE":     5,
	"RECONCILE_INTERVAL":    "5m",
	"CONFIRM_TIMEOUT":       "15s",
	"RECONCILE_CONCURRENCY": 4,
}

// LoadConfig loads configuration from a .env file (if present) and environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return loadFrom(viper.New())
}

func loadFrom(v *viper.Viper) (*AppConfig, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	dbPort, err := intValue(v, "DB_PORT")
	if err != nil {
		return nil, err
	}
	pageSize, err := intValue(v, "CATALOG_PAGE_SIZE")
	if err != nil {
		return nil, err
	}
	concurrency, err := intValue(v, "RECONCILE_CONCURRENCY")
	if err != nil {
		return nil, err
	}
	interval, err := durationValue(v, "RECONCILE_INTERVAL")
	if err != nil {
		return nil, err
	}
	confirmTimeout, err := durationValue(v, "CONFIRM_TIMEOUT")
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		ServerPort:      v.GetString("SERVER_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		TelegramToken:   v.GetString("TELEGRAM_BOT_TOKEN"),
		AdminToken:      v.GetString("ADMIN_TOKEN"),
		CatalogPageSize: pageSize,
		DB: db.Config{
			Host:     v.GetString("DB_HOST"),
			Port:     dbPort,
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Payment: PaymentConfig{
			BaseURL:  v.GetString("YOOMONEY_BASE_URL"),
			Receiver: v.GetString("YOOMONEY_RECEIVER"),
			Token:    v.GetString("YOOMONEY_TOKEN"),
		},
		Reconcile: ReconcileConfig{
			Interval:       interval,
			ConfirmTimeout: confirmTimeout,
			Concurrency:    concurrency,
		},
	}, nil
}

// intValue and durationValue reject malformed values instead of silently
// reading zero, which is what viper's getters do.
func intValue(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v.GetString(key))
	}
	return n, nil
}

func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v.GetString(key))
	}
	return d, nil
}
