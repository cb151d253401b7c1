// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/obrador/storefront/internal/domain/invoice"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Seller   SellerConfig
}

type AppConfig struct {
	Environment string
	HTTPAddr    string
	MetricsAddr string
}

// DatabaseConfig selects the storage backend. An empty host keeps the
// in-memory repositories, which is the default for local runs and tests.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SellerConfig is the issuing business identity stamped onto every invoice.
type SellerConfig struct {
	Name    string
	TaxID   string
	Address string
	Email   string
}

func Load() *Config {
	// Missing .env is fine; production supplies real environment variables.
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Seller: SellerConfig{
			Name:    getEnv("SELLER_NAME", "Obrador Artesano S.L."),
			TaxID:   getEnv("SELLER_TAX_ID", "B00000000"),
			Address: getEnv("SELLER_ADDRESS", ""),
			Email:   getEnv("SELLER_EMAIL", ""),
		},
	}
}

// Enabled reports whether a PostgreSQL backend is configured.
func (c *DatabaseConfig) Enabled() bool { return c.Host != "" }

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Snapshot converts the seller identity into the invoice domain type.
func (c *SellerConfig) Snapshot() invoice.Seller {
	return invoice.Seller{
		Name:    c.Name,
		TaxID:   c.TaxID,
		Address: c.Address,
		Email:   c.Email,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
