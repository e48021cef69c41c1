// Package sheets reads a CPI dataset from a Google Sheets range.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"inflation/internal/core"
	"inflation/internal/dataset"
)

// Config selects the spreadsheet range and how to authenticate.
type Config struct {
	SpreadsheetID      string
	Range              string // A1 notation, e.g. "CPI!A:B"
	DateColumn         string
	CPIColumn          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
	dateColumn    string
	cpiColumn     string
}

var _ dataset.Source = (*Source)(nil)

// New creates a Sheets source authenticated with service account credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Source, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	dateCol, cpiCol := cfg.DateColumn, cfg.CPIColumn
	if dateCol == "" {
		dateCol = "observation_date"
	}
	if cpiCol == "" {
		cpiCol = "FPCPITOTLZGNGA"
	}
	return &Source{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.Range,
		dateColumn:    dateCol,
		cpiColumn:     cpiCol,
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case cfg.ServiceAccountFile != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (s *Source) Name() string {
	return "sheets:" + s.spreadsheetID + "/" + s.readRange
}

func (s *Source) Fetch(ctx context.Context) ([]core.RawObservation, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.readRange, err)
	}
	return parseValues(resp.Values, s.dateColumn, s.cpiColumn)
}

// parseValues converts a values matrix whose first row is a header into raw rows.
func parseValues(values [][]interface{}, dateColumn, cpiColumn string) ([]core.RawObservation, error) {
	if len(values) == 0 {
		return nil, core.ErrEmptySeries
	}
	headers := toStrings(values[0])
	colDate := indexOf(headers, dateColumn)
	colCPI := indexOf(headers, cpiColumn)
	if colDate == -1 || colCPI == -1 {
		missing := make([]string, 0, 2)
		if colDate == -1 {
			missing = append(missing, dateColumn)
		}
		if colCPI == -1 {
			missing = append(missing, cpiColumn)
		}
		return nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	rows := make([]core.RawObservation, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		date := safeGet(row, colDate)
		if colDate < len(values[i]) {
			if serial, ok := values[i][colDate].(float64); ok {
				date = serialDate(serial)
			}
		}
		if date == "" {
			continue
		}
		rows = append(rows, core.RawObservation{Date: date, Value: safeGet(row, colCPI)})
	}
	return rows, nil
}

// sheetsEpoch is day zero of the spreadsheet serial date system.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serialDate converts a date cell rendered as a serial number into
// YYYY-MM-DD. Whole numbers from 1000 to 9999 are read as bare years.
func serialDate(serial float64) string {
	if serial == math.Trunc(serial) && serial >= 1000 && serial <= 9999 {
		return strconv.Itoa(int(serial))
	}
	days := int(math.Floor(serial))
	return sheetsEpoch.AddDate(0, 0, days).Format("2006-01-02")
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
