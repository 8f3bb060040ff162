// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"ledgerflow-wallet/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort    string
	MigrationsDir string
	DB            db.Config

	// Wallet policy knobs. Read once here and passed down explicitly; the
	// aggregates never read configuration themselves.
	SnapshotFrequency         int64
	DailyWithdrawalLimitCents int64
	DailyTransferLimitCents   int64
	DefaultCurrency           string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	serverPort := envOr("SERVER_PORT", "8080")
	migrationsDir := envOr("MIGRATIONS_DIR", "file://db/migrations")

	dbPort, err := envIntOr("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	snapshotFrequency, err := envIntOr("WALLET_SNAPSHOT_FREQUENCY", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_SNAPSHOT_FREQUENCY: %w", err)
	}
	withdrawalLimit, err := envIntOr("WALLET_DAILY_WITHDRAWAL_LIMIT", 500000)
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_DAILY_WITHDRAWAL_LIMIT: %w", err)
	}
	transferLimit, err := envIntOr("WALLET_DAILY_TRANSFER_LIMIT", 500000)
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_DAILY_TRANSFER_LIMIT: %w", err)
	}

	return &AppConfig{
		ServerPort:    serverPort,
		MigrationsDir: migrationsDir,
		DB: db.Config{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     int(dbPort),
			User:     envOr("DB_USER", "user"),
			Password: envOr("DB_PASSWORD", "password"),
			DBName:   envOr("DB_NAME", "walletdb"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		SnapshotFrequency:         snapshotFrequency,
		DailyWithdrawalLimitCents: withdrawalLimit,
		DailyTransferLimitCents:   transferLimit,
		DefaultCurrency:           envOr("WALLET_DEFAULT_CURRENCY", "BRL"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
