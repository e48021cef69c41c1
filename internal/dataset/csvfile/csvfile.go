// Package csvfile reads a CPI dataset from a CSV file with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"inflation/internal/core"
	"inflation/internal/dataset"
)

// Default column names of the FRED export.
const (
	DefaultDateColumn = "observation_date"
	DefaultCPIColumn  = "FPCPITOTLZGNGA"
)

type Source struct {
	path       string
	dateColumn string
	cpiColumn  string
}

var _ dataset.Source = (*Source)(nil)

func New(path, dateColumn, cpiColumn string) *Source {
	if dateColumn == "" {
		dateColumn = DefaultDateColumn
	}
	if cpiColumn == "" {
		cpiColumn = DefaultCPIColumn
	}
	return &Source{path: path, dateColumn: dateColumn, cpiColumn: cpiColumn}
}

func (s *Source) Name() string {
	return "csv:" + s.path
}

// Fetch reads the file. Parsing of the values is left to the caller.
func (s *Source) Fetch(ctx context.Context) ([]core.RawObservation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Read(ctx, f, s.dateColumn, s.cpiColumn)
}

// Read parses CSV data with a header row, returning the date and CPI columns.
// Header matching ignores case and surrounding spaces; rows with the wrong
// number of fields are returned with empty values so they are dropped.
func Read(ctx context.Context, r io.Reader, dateColumn, cpiColumn string) ([]core.RawObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.ErrEmptySeries
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	dateIdx := indexOf(headers, dateColumn)
	cpiIdx := indexOf(headers, cpiColumn)
	if dateIdx == -1 || cpiIdx == -1 {
		return nil, fmt.Errorf("unexpected csv header: want columns %q and %q, got %v", dateColumn, cpiColumn, headers)
	}

	var rows []core.RawObservation
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, core.RawObservation{
			Date:  safeGet(record, dateIdx),
			Value: safeGet(record, cpiIdx),
		})
	}
	return rows, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		// strip a UTF-8 BOM left by spreadsheet exports
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func safeGet(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
