package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"inflation/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataSource: "memory"}); err == nil {
		t.Fatal("expected error for unknown source")
	}

	cfg, err := FromAppConfig(&config.Config{DataSource: "worldbank", WorldBankCountry: "GHA"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != WorldBankSource || cfg.WorldBankCountry != "GHA" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"csv ok", Config{Type: CSVSource, CSVPath: "cpi.csv"}, false},
		{"csv missing path", Config{Type: CSVSource}, true},
		{"sqlite missing path", Config{Type: SQLiteSource}, true},
		{"sheets missing credentials", Config{Type: SheetsSource, GoogleSpreadsheetID: "id"}, true},
		{"sheets ok", Config{Type: SheetsSource, GoogleSpreadsheetID: "id", GoogleServiceAccountJSON: "{}"}, false},
		{"worldbank defaults", Config{Type: WorldBankSource}, false},
		{"unknown", Config{Type: "memory"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSource(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := NewFactory(logger)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "cpi.csv")
	if err := os.WriteFile(csvPath, []byte("observation_date,FPCPITOTLZGNGA\n2014-01-01,100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := f.CreateSource(ctx, Config{Type: CSVSource, CSVPath: csvPath})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if res.Source.Name() != "csv:"+csvPath {
		t.Errorf("unexpected csv source name %q", res.Source.Name())
	}

	dbPath := filepath.Join(t.TempDir(), "inflation.db")
	res, err = f.CreateSource(ctx, Config{Type: SQLiteSource, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if res.Updates != nil {
		t.Error("expected no AMQP client without AMQP_URL")
	}
	if res.Cleanup == nil {
		t.Fatal("expected cleanup for sqlite source")
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}

	res, err = f.CreateSource(ctx, Config{Type: WorldBankSource})
	if err != nil {
		t.Fatalf("worldbank: %v", err)
	}
	if res.Source.Name() != "worldbank:NGA/FP.CPI.TOTL" {
		t.Errorf("unexpected worldbank source name %q", res.Source.Name())
	}
}
