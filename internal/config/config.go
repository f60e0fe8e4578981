package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port          string
	PublicBaseURL string // prefix of share links

	LogLevel string

	// Backend selection
	DataBackend    string
	SQLiteDBPath   string
	SeedSampleData bool

	// AMQP (optional for the server, required by the ledger worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// UI
	NotifyDelay time.Duration

	// Startup view
	StartMode      string
	StartInvoiceID string

	// Rendered PDF cache
	PDFCacheSize int
	PDFCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8081"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8081/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DataBackend:    getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/invoices.db"),
		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", true),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gstinvoicer"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "invoice.saved"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		NotifyDelay: getEnvDuration("NOTIFY_DELAY", 3*time.Second),

		StartMode:      getEnv("START_MODE", ""),
		StartInvoiceID: getEnv("START_INVOICE_ID", ""),

		PDFCacheSize: getEnvInt("PDF_CACHE_SIZE", 64),
		PDFCacheTTL:  getEnvDuration("PDF_CACHE_TTL", 10*time.Minute),
	}
}

// Validate checks the server configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if u, err := url.Parse(c.PublicBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid public base URL '%s': must be an absolute http(s) URL", c.PublicBaseURL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	errors = append(errors, c.amqpErrors()...)

	if c.NotifyDelay < 100*time.Millisecond || c.NotifyDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid notify delay %v: must be between 100ms and 1m", c.NotifyDelay))
	}

	switch strings.ToLower(c.StartMode) {
	case "", "dashboard", "pdf":
	default:
		errors = append(errors, fmt.Sprintf("invalid start mode '%s': must be empty, 'dashboard' or 'pdf'", c.StartMode))
	}

	if c.PDFCacheSize < 1 || c.PDFCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid PDF cache size %d: must be between 1 and 10000", c.PDFCacheSize))
	}
	if c.PDFCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid PDF cache TTL %v: must be at least 1 second", c.PDFCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateLedger checks what the ledger worker needs: a broker and a sheet.
func (c *Config) ValidateLedger() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the ledger worker")
	}
	errors = append(errors, c.amqpErrors()...)

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the ledger worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the ledger worker")
	}

	if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	} else if c.GoogleServiceAccountJSON == "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("ledger configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) amqpErrors() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var errors []string
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
	return errors
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
