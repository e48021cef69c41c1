package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inflation/internal/core"
	"inflation/internal/dataset"
)

const fredExport = "\ufeffobservation_date,FPCPITOTLZGNGA\n" +
	"2015-01-01,100\n" +
	"2016-01-01,.\n" +
	"\n" +
	"2024-01-01,400\n"

func TestReadFREDExport(t *testing.T) {
	rows, err := Read(context.Background(), strings.NewReader(fredExport), DefaultDateColumn, DefaultCPIColumn)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %v", len(rows), rows)
	}
	if rows[2] != (core.RawObservation{Date: "2024-01-01", Value: "400"}) {
		t.Fatalf("unexpected row %+v", rows[2])
	}
}

func TestReadCustomColumns(t *testing.T) {
	data := "cpi, Date ,note\n90,2015-03-01,a\n110,2015-09-01\n"
	rows, err := Read(context.Background(), strings.NewReader(data), "date", "CPI")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 2 || rows[1].Date != "2015-09-01" || rows[0].Value != "90" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(context.Background(), strings.NewReader(""), "a", "b"); !errors.Is(err, core.ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries for empty file, got %v", err)
	}
	if _, err := Read(context.Background(), strings.NewReader("x,y\n1,2\n"), "date", "cpi"); err == nil {
		t.Fatal("expected header error")
	}
}

func TestSourceLoadsSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpi.csv")
	if err := os.WriteFile(path, []byte(fredExport), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	src := New(path, "", "")
	if src.Name() != "csv:"+path {
		t.Fatalf("unexpected name %q", src.Name())
	}

	series, err := dataset.Load(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	latest, _ := series.Latest()
	if series.Len() != 2 || latest.CPI != 400 {
		t.Fatalf("unexpected series len=%d latest=%+v", series.Len(), latest)
	}

	if _, err := New(filepath.Join(t.TempDir(), "missing.csv"), "", "").Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
