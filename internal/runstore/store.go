package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrRunNotFound reports an unknown run id or prefix.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun reports a prefix shared by several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Store persists merge history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database at path, creating it and applying
// migrations as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores a run and its per-quotation results in one transaction.
// A run without an id is assigned a random UUID.
func (s *Store) RecordRun(ctx context.Context, run Run, results []QuotationResult) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, document_path, transcript_path,
            report_path, output_path, max_rigor, quotations, failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.DocumentPath,
		run.TranscriptPath,
		nullableString(run.ReportPath),
		nullableString(run.OutputPath),
		run.MaxRigor,
		run.Quotations,
		run.Failed,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quotation_results (
            run_id, position, quotation_id, matched, rigor, start_line, end_line,
            start_time, end_time, start_estimated, near_miss_line, near_miss_score
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		var rigor, startLine, endLine any
		if r.Matched {
			rigor, startLine, endLine = r.Rigor, r.StartLine, r.EndLine
		}
		var nearLine, nearScore any
		if r.NearMissLine > 0 {
			nearLine, nearScore = r.NearMissLine, r.NearMissScore
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, r.Position, r.QuotationID, r.Matched, rigor, startLine, endLine,
			nullableString(r.StartTime), nullableString(r.EndTime), r.StartEstimated,
			nearLine, nearScore,
		); err != nil {
			return Run{}, fmt.Errorf("insert result %s: %w", r.QuotationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

const runColumns = `id, started_at, finished_at, document_path, transcript_path,
    report_path, output_path, max_rigor, quotations, failed`

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun resolves a full run id or a unique prefix of one.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (Run, error) {
	if idOrPrefix == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		idOrPrefix, len(idOrPrefix), idOrPrefix)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// Results returns a run's quotation rows in merge order.
func (s *Store) Results(ctx context.Context, runID string) ([]QuotationResult, error) {
	return s.queryResults(ctx, `WHERE run_id = ?`, runID)
}

// Failures returns the unmatched quotations of a run in merge order.
func (s *Store) Failures(ctx context.Context, runID string) ([]QuotationResult, error) {
	return s.queryResults(ctx, `WHERE run_id = ? AND matched = 0`, runID)
}

func (s *Store) queryResults(ctx context.Context, where string, args ...any) ([]QuotationResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, quotation_id, matched, rigor, start_line, end_line,
            start_time, end_time, start_estimated, near_miss_line, near_miss_score
         FROM quotation_results `+where+` ORDER BY position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []QuotationResult
	for rows.Next() {
		var (
			r                         QuotationResult
			rigor, startLine, endLine sql.NullInt64
			startTime, endTime        sql.NullString
			nearLine                  sql.NullInt64
			nearScore                 sql.NullFloat64
		)
		if err := rows.Scan(&r.Position, &r.QuotationID, &r.Matched, &rigor, &startLine, &endLine,
			&startTime, &endTime, &r.StartEstimated, &nearLine, &nearScore); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Rigor = int(rigor.Int64)
		r.StartLine = int(startLine.Int64)
		r.EndLine = int(endLine.Int64)
		r.StartTime = startTime.String
		r.EndTime = endTime.String
		r.NearMissLine = int(nearLine.Int64)
		r.NearMissScore = nearScore.Float64
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run                 Run
		started, finished   string
		reportPath, outPath sql.NullString
	)
	if err := rows.Scan(&run.ID, &started, &finished, &run.DocumentPath, &run.TranscriptPath,
		&reportPath, &outPath, &run.MaxRigor, &run.Quotations, &run.Failed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	run.ReportPath = reportPath.String
	run.OutputPath = outPath.String
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
