// Package backend builds the configured dataset source.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"inflation/internal/amqp"
	"inflation/internal/dataset/csvfile"
	"inflation/internal/dataset/sheets"
	"inflation/internal/dataset/worldbank"
	"inflation/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVSource:
		return f.createCSVSource(config)
	case SQLiteSource:
		return f.createSQLiteSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	case WorldBankSource:
		return f.createWorldBankSource(config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVSource(config Config) (*SourceResult, error) {
	src := csvfile.New(config.CSVPath, config.CSVDateColumn, config.CSVCPIColumn)
	f.logger.Info("Initialized CSV source", "path", config.CSVPath)
	return &SourceResult{Source: src}, nil
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// update notifications are optional
	var updates *amqp.Client
	if config.AMQPURL != "" {
		updates, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without update notifications", "error", err)
			updates = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite source",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", updates != nil)

	return &SourceResult{
		Source:  repo,
		Updates: updates,
		Cleanup: func() error {
			if updates != nil {
				updates.Close()
			}
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	src, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		Range:              config.GoogleSheetRange,
		DateColumn:         config.CSVDateColumn,
		CPIColumn:          config.CSVCPIColumn,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets source", "range", config.GoogleSheetRange)
	return &SourceResult{Source: src}, nil
}

func (f *DefaultFactory) createWorldBankSource(config Config) (*SourceResult, error) {
	src := worldbank.New(config.WorldBankURL, config.WorldBankCountry, config.WorldBankIndicator, nil)
	f.logger.Info("Initialized World Bank source",
		"country", config.WorldBankCountry,
		"indicator", config.WorldBankIndicator)
	return &SourceResult{Source: src}, nil
}
