package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection: "kvfile" or "sqlite"
	DataBackend string

	// kvfile backend
	LedgerFilePath string

	// sqlite backend
	SQLiteDBPath string

	// AMQP (optional; enables the sheet-sync worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets sync target (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Reports
	ReportColumnsFile string // optional override of the embedded column sets
	CompanyLabel      string // default company label for new invoices
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "kvfile"),

		LedgerFilePath: getEnv("LEDGER_FILE_PATH", "./data/reinf_notas.json"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/reinf.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "reinf"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_notas"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Notas"),

		ReportColumnsFile: getEnv("REPORT_COLUMNS_FILE", ""),
		CompanyLabel:      getEnv("COMPANY_LABEL", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "kvfile":
		if c.LedgerFilePath == "" {
			errors = append(errors, "ledger file path cannot be empty when using kvfile backend")
		} else {
			errors = append(errors, ensureDir(c.LedgerFilePath)...)
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			errors = append(errors, ensureDir(c.SQLiteDBPath)...)
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [kvfile sqlite]", c.DataBackend))
	}

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

	if c.ReportColumnsFile != "" {
		if _, err := os.Stat(c.ReportColumnsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("report columns file does not exist: %s", c.ReportColumnsFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir checks that the parent directory of path exists or can be created.
func ensureDir(path string) []string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return []string{fmt.Sprintf("cannot create data directory '%s': %v", dir, err)}
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
