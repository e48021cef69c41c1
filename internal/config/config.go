package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port string

	// Dataset source selection
	DataSource string

	// CSV source
	CSVPath       string
	CSVDateColumn string
	CSVCPIColumn  string

	// Database
	SQLiteDBPath string

	// AMQP dataset notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets source
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// World Bank source
	WorldBankURL       string
	WorldBankCountry   string
	WorldBankIndicator string

	// Calculator
	HeadlineYears     int
	DefaultYearOffset int
	CategoriesFile    string
	CurrencySymbol    string

	// Reloading and caching
	ReloadSchedule string
	CacheSize      int
	CacheTTL       time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:       getEnv("PORT", "8081"),
		DataSource: getEnv("DATA_SOURCE", "csv"),

		CSVPath:       getEnv("CSV_PATH", "./data/cpi.csv"),
		CSVDateColumn: getEnv("CSV_DATE_COLUMN", "observation_date"),
		CSVCPIColumn:  getEnv("CSV_CPI_COLUMN", "FPCPITOTLZGNGA"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/inflation.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "inflation"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_updates"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:         getEnv("GOOGLE_SHEET_RANGE", "CPI!A:B"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		WorldBankURL:       getEnv("WORLDBANK_URL", "https://api.worldbank.org/v2"),
		WorldBankCountry:   getEnv("WORLDBANK_COUNTRY", "NGA"),
		WorldBankIndicator: getEnv("WORLDBANK_INDICATOR", "FP.CPI.TOTL"),

		HeadlineYears:     getEnvInt("HEADLINE_YEARS", 10),
		DefaultYearOffset: getEnvInt("DEFAULT_YEAR_OFFSET", 10),
		CategoriesFile:    getEnv("CATEGORIES_FILE", ""),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "₦"),

		ReloadSchedule: getEnv("RELOAD_SCHEDULE", ""),
		CacheSize:      getEnvInt("CACHE_SIZE", 256),
		CacheTTL:       getEnvDuration("CACHE_TTL", 10*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// ValidSources lists the accepted DATA_SOURCE values
var ValidSources = []string{"csv", "sqlite", "sheets", "worldbank"}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidSource := false
	for _, source := range ValidSources {
		if c.DataSource == source {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, ValidSources))
	}

	switch c.DataSource {
	case "csv":
		if c.CSVPath == "" {
			errors = append(errors, "CSV path cannot be empty when using csv source")
		} else if _, err := os.Stat(c.CSVPath); err != nil {
			errors = append(errors, fmt.Sprintf("CSV file is not readable: %s", c.CSVPath))
		}
		if c.CSVDateColumn == "" || c.CSVCPIColumn == "" {
			errors = append(errors, "CSV date and CPI column names cannot be empty")
		}
	case "sqlite":
		errors = append(errors, c.validateSQLitePath()...)
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google sheet range is required when using sheets source")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets source")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	case "worldbank":
		if u, err := url.Parse(c.WorldBankURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid World Bank URL '%s'", c.WorldBankURL))
		}
		if c.WorldBankCountry == "" || c.WorldBankIndicator == "" {
			errors = append(errors, "World Bank country and indicator cannot be empty")
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.HeadlineYears < 1 || c.HeadlineYears > 100 {
		errors = append(errors, fmt.Sprintf("invalid headline years %d: must be between 1 and 100", c.HeadlineYears))
	}
	if c.DefaultYearOffset < 1 || c.DefaultYearOffset > 100 {
		errors = append(errors, fmt.Sprintf("invalid default year offset %d: must be between 1 and 100", c.DefaultYearOffset))
	}

	if c.CategoriesFile != "" {
		if _, err := os.Stat(c.CategoriesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("categories file does not exist: %s", c.CategoriesFile))
		}
	}

	if c.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.ReloadSchedule); err != nil {
			errors = append(errors, fmt.Sprintf("invalid reload schedule '%s': %v", c.ReloadSchedule, err))
		}
	}

	if c.CacheSize < 1 || c.CacheSize > 100000 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be between 1 and 100000", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateImport checks the settings the importer needs on top of its source:
// a usable SQLite path.
func (c *Config) ValidateImport() error {
	if errs := c.validateSQLitePath(); len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c *Config) validateSQLitePath() []string {
	if c.SQLiteDBPath == "" {
		return []string{"SQLite database path cannot be empty when using sqlite source"}
	}
	dir := filepath.Dir(c.SQLiteDBPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return []string{fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err)}
			}
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
