package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Sales     SalesConfig
	Lookup    LookupConfig
	Catalog   CatalogConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// BackendConfig contains the commerce backend endpoint and cashier credentials.
type BackendConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Email    string
	Password string
}

// SalesConfig holds pricing and quotation defaults.
type SalesConfig struct {
	TaxRate           decimal.Decimal
	DefaultCustomerID int
	WarehouseID       int
	QuotationStatus   string
}

// LookupConfig tunes the customer lookup flow.
type LookupConfig struct {
	Debounce time.Duration
}

// CatalogConfig controls background catalog refreshes.
type CatalogConfig struct {
	RefreshSchedule string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sales journal can be written.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether a MongoDB deployment was configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when the environment is already populated.
		_ = godotenv.Load()
	}

	timeout, err := getenvDuration("BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	debounce, err := getenvDuration("CUSTOMER_LOOKUP_DEBOUNCE", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	taxRate, err := decimal.NewFromString(getenvWithDefault("TAX_RATE", "0.18"))
	if err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	customerID, err := getenvInt("DEFAULT_CUSTOMER_ID", 1)
	if err != nil {
		return nil, err
	}
	warehouseID, err := getenvInt("DEFAULT_WAREHOUSE_ID", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Backend: BackendConfig{
			BaseURL:  os.Getenv("BACKEND_BASE_URL"),
			Timeout:  timeout,
			Email:    os.Getenv("POS_EMAIL"),
			Password: os.Getenv("POS_PASSWORD"),
		},
		Sales: SalesConfig{
			TaxRate:           taxRate,
			DefaultCustomerID: customerID,
			WarehouseID:       warehouseID,
			QuotationStatus:   getenvWithDefault("QUOTATION_STATUS", "Pendiente"),
		},
		Lookup: LookupConfig{
			Debounce: debounce,
		},
		Catalog: CatalogConfig{
			RefreshSchedule: getenvWithDefault("CATALOG_REFRESH_CRON", "*/15 * * * *"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "55 23 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Lima"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pos"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL must be provided")
	}

	if c.Backend.Timeout <= 0 {
		return errors.New("BACKEND_TIMEOUT must be positive")
	}

	if c.Sales.TaxRate.IsNegative() || c.Sales.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("TAX_RATE must be within [0, 1)")
	}

	if c.Sales.QuotationStatus == "" {
		return errors.New("QUOTATION_STATUS must not be empty")
	}

	if c.Lookup.Debounce <= 0 {
		return errors.New("CUSTOMER_LOOKUP_DEBOUNCE must be positive")
	}

	if c.Catalog.RefreshSchedule == "" {
		return errors.New("CATALOG_REFRESH_CRON must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
