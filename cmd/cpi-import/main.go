package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"inflation/internal/amqp"
	"inflation/internal/backend"
	"inflation/internal/cli"
	"inflation/internal/config"
	"inflation/internal/dataset"
	applog "inflation/internal/log"
	"inflation/internal/storage"
)

var (
	cfg    *config.Config
	logger *applog.Logger
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "cpi-import",
	Short: "Import a CPI dataset into SQLite",
	Long: "Fetch CPI observations from a CSV file, the World Bank API or a Google Sheet, " +
		"validate them and replace the observations stored in SQLite. " +
		"When AMQP_URL is set, running servers are told to reload.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentImport)
		return cfg.ValidateImport()
	},
	RunE: runImport,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent import",
	RunE:  runStatus,
}

func init() {
	cli.LoadEnvFile()
	cfg = config.Load()
	if cfg.DataSource == string(backend.SQLiteSource) {
		cfg.DataSource = string(backend.CSVSource)
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfg.SQLiteDBPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	f = rootCmd.Flags()
	f.StringVar(&cfg.DataSource, "source", cfg.DataSource, "source to import from (csv, worldbank, sheets)")
	f.StringVar(&cfg.CSVPath, "csv-path", cfg.CSVPath, "CSV file to read")
	f.StringVar(&cfg.CSVDateColumn, "date-column", cfg.CSVDateColumn, "date column header (csv and sheets)")
	f.StringVar(&cfg.CSVCPIColumn, "cpi-column", cfg.CSVCPIColumn, "CPI column header (csv and sheets)")
	f.StringVar(&cfg.WorldBankURL, "worldbank-url", cfg.WorldBankURL, "World Bank API base URL")
	f.StringVar(&cfg.WorldBankCountry, "country", cfg.WorldBankCountry, "World Bank country code")
	f.StringVar(&cfg.WorldBankIndicator, "indicator", cfg.WorldBankIndicator, "World Bank indicator")
	f.StringVar(&cfg.GoogleSpreadsheetID, "spreadsheet-id", cfg.GoogleSpreadsheetID, "Google Spreadsheet ID")
	f.StringVar(&cfg.GoogleSheetRange, "range", cfg.GoogleSheetRange, "Google Sheets range")
	f.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "AMQP URL for reload notifications (empty disables)")
	f.BoolVar(&dryRun, "dry-run", false, "validate the source without writing")

	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	if sourceCfg.Type == backend.SQLiteSource {
		return errors.New("sqlite is the import target, choose csv, worldbank or sheets")
	}
	res, err := backend.NewFactory(logger.Logger).CreateSource(ctx, sourceCfg)
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	series, err := dataset.Load(ctx, res.Source, logger)
	if err != nil {
		return err
	}
	first, _ := series.First()
	latest, _ := series.Latest()
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d observations from %s to %s (dry run, nothing written)\n",
			res.Source.Name(), series.Len(), first.Date.Format("2006-01-02"), latest.Date.Format("2006-01-02"))
		return nil
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()

	imp, err := repo.ReplaceObservations(ctx, res.Source.Name(), series.Observations())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "import %d: %d observations from %s, latest %s\n",
		imp.ID, imp.Observations, imp.Source, imp.LatestDate.Format("2006-01-02"))

	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, servers pick up the import on their next reload")
		return nil
	}
	return publish(ctx, imp.ID, imp.Source, imp.Observations, imp.LatestDate)
}

func publish(ctx context.Context, importID int64, source string, observations int, latest time.Time) error {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	msg := amqp.NewDatasetUpdatedMessage(importID, source, observations, latest)
	if err := client.PublishDatasetUpdated(ctx, msg); err != nil {
		return fmt.Errorf("publish dataset update: %w", err)
	}
	logger.Info("Published dataset update", "import_id", importID, applog.FieldSource, source)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()

	imp, err := repo.LatestImport(cmd.Context())
	if errors.Is(err, sql.ErrNoRows) {
		fmt.Fprintln(cmd.OutOrStdout(), "no dataset imported yet")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "import %d from %s: %d observations, latest %s, imported %s\n",
		imp.ID, imp.Source, imp.Observations,
		imp.LatestDate.Format("2006-01-02"), imp.ImportedAt.Format(time.RFC3339))
	return nil
}
