package backend

import (
	"context"

	"inflation/internal/amqp"
	"inflation/internal/dataset"
)

// CleanupFunc releases resources held by a source
type CleanupFunc func() error

// SourceResult contains the dataset source and the resources that come with it
type SourceResult struct {
	Source dataset.Source
	// Updates is set when dataset update notifications are enabled
	Updates *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates dataset sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// CSV specific
	CSVPath       string
	CSVDateColumn string
	CSVCPIColumn  string

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// World Bank specific
	WorldBankURL       string
	WorldBankCountry   string
	WorldBankIndicator string
}

// SourceType represents the type of dataset source
type SourceType string

const (
	CSVSource       SourceType = "csv"
	SQLiteSource    SourceType = "sqlite"
	SheetsSource    SourceType = "sheets"
	WorldBankSource SourceType = "worldbank"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is known
func (st SourceType) IsValid() bool {
	switch st {
	case CSVSource, SQLiteSource, SheetsSource, WorldBankSource:
		return true
	default:
		return false
	}
}
