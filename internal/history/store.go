// Package history persists run summaries to a local SQLite database
// under the state home, so past scans can be listed and re-rendered
// without rescanning.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/report"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a scan ID has no history entry.
var ErrNotFound = errors.New("not found in history")

// ScanEntry is one row of the scan history listing.
type ScanEntry struct {
	ID               string
	Root             string
	StartedAt        time.Time
	FinishedAt       time.Time
	TotalFiles       int
	TotalFolders     int
	TotalBytes       int64
	CriticalCount    int
	WarningCount     int
	DuplicateGroups  int
	ReclaimableBytes int64
	Incomplete       bool
}

// ApplyEntry is one row of the apply history listing.
type ApplyEntry struct {
	ID        int64
	ScanID    string
	PlanID    string
	Mode      string
	StartedAt time.Time
	Duration  time.Duration
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Cancelled bool
}

// Stats aggregates the whole history.
type Stats struct {
	Scans            int
	Applies          int
	FilesScanned     int64
	BytesScanned     int64
	ReclaimableFound int64
	ActionsSucceeded int64
	ActionsFailed    int64
}

// Store manages the SQLite history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath
// and ensures the schema exists.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout must come first so the remaining pragmas themselves
	// wait on locks instead of failing.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry retries a statement with exponential backoff on lock
// errors, which can occur when two shipshape processes initialize the
// same database file.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// RecordScan stores a scan summary. The full summary is kept as JSON so
// reports can be re-rendered later in any format.
func (s *Store) RecordScan(ctx context.Context, summary *report.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	query := `INSERT INTO scans
		(id, root, started_at, finished_at, total_files, total_folders, total_bytes,
		 critical_count, warning_count, duplicate_groups, reclaimable_bytes, incomplete, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		summary.ScanID,
		summary.Root,
		summary.ScannedAt.UTC(),
		summary.ScannedAt.Add(summary.ScanDuration).UTC(),
		summary.TotalFiles,
		summary.TotalFolders,
		summary.TotalBytes,
		summary.CriticalCount,
		summary.WarningCount,
		summary.DuplicateGroupCount,
		summary.ReclaimableBytes,
		summary.Incomplete,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// RecordApply stores an apply result. scanID may be empty when the plan
// was loaded from a file without a recorded scan.
func (s *Store) RecordApply(ctx context.Context, scanID, mode string, result *models.ExecutionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal apply result: %w", err)
	}

	query := `INSERT INTO applies
		(scan_id, plan_id, mode, started_at, duration_ms, total, succeeded, failed, skipped, cancelled, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		scanID,
		result.PlanID,
		mode,
		result.StartedAt.UTC(),
		result.Duration.Milliseconds(),
		result.Total,
		result.Succeeded,
		result.Failed,
		result.Skipped,
		result.Cancelled,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert apply: %w", err)
	}
	return nil
}

// ListScans returns the most recent scans, newest first. limit <= 0
// returns everything.
func (s *Store) ListScans(ctx context.Context, limit int) ([]*ScanEntry, error) {
	query := `SELECT id, root, started_at, finished_at, total_files, total_folders, total_bytes,
		critical_count, warning_count, duplicate_groups, reclaimable_bytes, incomplete
		FROM scans ORDER BY started_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var entries []*ScanEntry
	for rows.Next() {
		e := &ScanEntry{}
		if err := rows.Scan(&e.ID, &e.Root, &e.StartedAt, &e.FinishedAt,
			&e.TotalFiles, &e.TotalFolders, &e.TotalBytes,
			&e.CriticalCount, &e.WarningCount, &e.DuplicateGroups,
			&e.ReclaimableBytes, &e.Incomplete); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetScan returns the stored summary for a scan ID. Unique ID prefixes
// are accepted, so `history show 3f2a` works like git short hashes.
func (s *Store) GetScan(ctx context.Context, id string) (*report.Summary, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT summary_json FROM scans WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return s.getScanByPrefix(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query scan %s: %w", id, err)
	}
	return unmarshalSummary(data)
}

func (s *Store) getScanByPrefix(ctx context.Context, prefix string) (*report.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT summary_json FROM scans WHERE id LIKE ? LIMIT 2`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("query scan prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		matches = append(matches, data)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("scan %q: %w", prefix, ErrNotFound)
	case 1:
		return unmarshalSummary(matches[0])
	}
	return nil, fmt.Errorf("scan ID prefix %q is ambiguous", prefix)
}

// LatestScan returns the most recent scan's summary.
func (s *Store) LatestScan(ctx context.Context) (*report.Summary, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary_json FROM scans ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no scans recorded: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest scan: %w", err)
	}
	return unmarshalSummary(data)
}

func unmarshalSummary(data string) (*report.Summary, error) {
	var summary report.Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &summary, nil
}

// ListApplies returns the most recent applies, newest first. limit <= 0
// returns everything.
func (s *Store) ListApplies(ctx context.Context, limit int) ([]*ApplyEntry, error) {
	query := `SELECT id, COALESCE(scan_id, ''), plan_id, mode, started_at, duration_ms,
		total, succeeded, failed, skipped, cancelled
		FROM applies ORDER BY started_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applies: %w", err)
	}
	defer rows.Close()

	return collectApplies(rows)
}

// AppliesForScan returns the applies linked to one scan, newest first.
func (s *Store) AppliesForScan(ctx context.Context, scanID string) ([]*ApplyEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(scan_id, ''), plan_id, mode, started_at, duration_ms,
		 total, succeeded, failed, skipped, cancelled
		 FROM applies WHERE scan_id = ? ORDER BY started_at DESC, id DESC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query applies for scan %s: %w", scanID, err)
	}
	defer rows.Close()

	return collectApplies(rows)
}

// LatestApplyForScan returns the full stored result of the most recent
// apply linked to the scan, so a report can show what an apply actually
// did after the fact.
func (s *Store) LatestApplyForScan(ctx context.Context, scanID string) (*models.ExecutionResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM applies WHERE scan_id = ?
		 ORDER BY started_at DESC, id DESC LIMIT 1`, scanID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no applies for scan %s: %w", scanID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest apply for scan %s: %w", scanID, err)
	}

	var result models.ExecutionResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("unmarshal apply result: %w", err)
	}
	return &result, nil
}

func collectApplies(rows *sql.Rows) ([]*ApplyEntry, error) {
	var entries []*ApplyEntry
	for rows.Next() {
		e := &ApplyEntry{}
		var durationMS int64
		if err := rows.Scan(&e.ID, &e.ScanID, &e.PlanID, &e.Mode, &e.StartedAt, &durationMS,
			&e.Total, &e.Succeeded, &e.Failed, &e.Skipped, &e.Cancelled); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AggregateStats tallies the whole history.
func (s *Store) AggregateStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(total_files), 0), COALESCE(SUM(total_bytes), 0),
		COALESCE(SUM(reclaimable_bytes), 0) FROM scans`).
		Scan(&stats.Scans, &stats.FilesScanned, &stats.BytesScanned, &stats.ReclaimableFound)
	if err != nil {
		return nil, fmt.Errorf("aggregate scans: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(succeeded), 0), COALESCE(SUM(failed), 0) FROM applies`).
		Scan(&stats.Applies, &stats.ActionsSucceeded, &stats.ActionsFailed)
	if err != nil {
		return nil, fmt.Errorf("aggregate applies: %w", err)
	}

	return stats, nil
}

// Prune deletes scans beyond the newest keepRuns, along with their
// linked applies. keepRuns <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, keepRuns int) error {
	if keepRuns <= 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM applies WHERE scan_id IN (
		SELECT id FROM scans ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?)`, keepRuns)
	if err != nil {
		return fmt.Errorf("prune applies: %w", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM scans WHERE id IN (
		SELECT id FROM scans ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?)`, keepRuns)
	if err != nil {
		return fmt.Errorf("prune scans: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prune: %w", err)
	}
	return nil
}

// Clear deletes all history.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM applies`); err != nil {
		return fmt.Errorf("clear applies: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scans`); err != nil {
		return fmt.Errorf("clear scans: %w", err)
	}
	return nil
}
