// Package storage persists imported CPI observations in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"inflation/internal/core"
	"inflation/internal/dataset"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Import records one completed dataset import.
type Import struct {
	ID           int64
	Source       string
	Observations int
	LatestDate   time.Time
	ImportedAt   time.Time
}

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

var _ dataset.Source = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceObservations swaps the stored series for obs in one transaction and
// records the import. The series is validated first so a bad import never
// clears existing data.
func (r *SQLiteRepository) ReplaceObservations(ctx context.Context, source string, obs []core.Observation) (Import, error) {
	series, err := core.NewTimeSeries(obs)
	if err != nil {
		return Import{}, fmt.Errorf("validate observations: %w", err)
	}
	latest, _ := series.Latest()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return Import{}, fmt.Errorf("clear observations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO observations (observation_date, cpi) VALUES (?, ?)`)
	if err != nil {
		return Import{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range series.Observations() {
		if _, err := stmt.ExecContext(ctx, o.Date.Format(dateLayout), o.CPI); err != nil {
			return Import{}, fmt.Errorf("insert observation %s: %w", o.Date.Format(dateLayout), err)
		}
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_imports (source, observations, latest_date, imported_at) VALUES (?, ?, ?, ?)`,
		source, series.Len(), latest.Date.Format(dateLayout), now.Format(time.RFC3339))
	if err != nil {
		return Import{}, fmt.Errorf("record import: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Import{}, fmt.Errorf("import id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Import{}, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Observations imported to SQLite",
		"import_id", id,
		"source", source,
		"observations", series.Len(),
		"latest_date", latest.Date.Format(dateLayout))

	return Import{
		ID:           id,
		Source:       source,
		Observations: series.Len(),
		LatestDate:   latest.Date,
		ImportedAt:   now,
	}, nil
}

// ListObservations returns the stored observations ordered by date.
func (r *SQLiteRepository) ListObservations(ctx context.Context) ([]core.Observation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT observation_date, cpi FROM observations ORDER BY observation_date`)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []core.Observation
	for rows.Next() {
		var date string
		var cpi float64
		if err := rows.Scan(&date, &cpi); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		out = append(out, core.Observation{Date: d, CPI: cpi})
	}
	return out, rows.Err()
}

// LatestImport returns the most recent import, or sql.ErrNoRows if none.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (Import, error) {
	var (
		imp        Import
		latest     string
		importedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, source, observations, latest_date, imported_at FROM dataset_imports ORDER BY id DESC LIMIT 1`).
		Scan(&imp.ID, &imp.Source, &imp.Observations, &latest, &importedAt)
	if err != nil {
		return Import{}, err
	}
	if imp.LatestDate, err = time.Parse(dateLayout, latest); err != nil {
		return Import{}, fmt.Errorf("stored latest date %q: %w", latest, err)
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, importedAt); err == nil {
			imp.ImportedAt = t
			break
		}
	}
	return imp, nil
}

// Name implements dataset.Source.
func (r *SQLiteRepository) Name() string {
	return "sqlite:" + r.path
}

// Fetch implements dataset.Source.
func (r *SQLiteRepository) Fetch(ctx context.Context) ([]core.RawObservation, error) {
	obs, err := r.ListObservations(ctx)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		if _, err := r.LatestImport(ctx); errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no dataset imported yet, run cpi-import", core.ErrEmptySeries)
		}
		return nil, core.ErrEmptySeries
	}
	rows := make([]core.RawObservation, len(obs))
	for i, o := range obs {
		rows[i] = core.RawObservation{
			Date:  o.Date.Format(dateLayout),
			Value: strconv.FormatFloat(o.CPI, 'f', -1, 64),
		}
	}
	return rows, nil
}
