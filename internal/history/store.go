package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"labbook/internal/config"
	"labbook/internal/orchestrator"
	"labbook/internal/services"
)

// Store persists run summaries and the fetched-asset index in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveSummary records a finished run and its per-module results.
func (s *Store) SaveSummary(ctx context.Context, summary *orchestrator.Summary, reportPath string) error {
	if summary == nil {
		return errors.New("summary is required")
	}

	succeeded, failed, skipped := summary.Counts()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, succeeded, failed, skipped, report_path)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.StartedAt.Format(time.RFC3339Nano),
		summary.FinishedAt.Format(time.RFC3339Nano),
		succeeded,
		failed,
		skipped,
		nullableString(reportPath),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, result := range summary.Results {
		artifactsJSON, err := json.Marshal(result.ArtifactPaths)
		if err != nil {
			return fmt.Errorf("marshal artifacts: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_results (run_id, position, module_id, status, error_detail, artifacts_json, duration_ms)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID,
			position,
			result.ModuleID,
			string(result.Status),
			nullableString(result.ErrorDetail),
			string(artifactsJSON),
			result.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", result.ModuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, succeeded, failed, skipped, report_path
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var reportPath sql.NullString
		if err := rows.Scan(&run.ID, &started, &finished, &run.Succeeded, &run.Failed, &run.Skipped, &reportPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		run.ReportPath = reportPath.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ResultsForRun returns the per-module results of one run in execution order.
func (s *Store) ResultsForRun(ctx context.Context, runID string) ([]ModuleResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, position, module_id, status, error_detail, artifacts_json, duration_ms
         FROM run_results WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []ModuleResult
	for rows.Next() {
		var result ModuleResult
		var errorDetail sql.NullString
		var artifactsJSON string
		var durationMS int64
		if err := rows.Scan(&result.RunID, &result.Position, &result.ModuleID, &result.Status, &errorDetail, &artifactsJSON, &durationMS); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.ErrorDetail = errorDetail.String
		result.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(artifactsJSON), &result.ArtifactPaths); err != nil {
			return nil, fmt.Errorf("decode artifacts for %s: %w", result.ModuleID, err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// RecordAsset stores or refreshes a fetched-asset index entry.
func (s *Store) RecordAsset(ctx context.Context, moduleID, ref, localPath string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (module_id, ref, local_path, fetched_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(module_id, ref) DO UPDATE SET local_path = excluded.local_path, fetched_at = excluded.fetched_at`,
		moduleID, ref, localPath, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record asset: %w", err)
	}
	return nil
}

// LookupAsset returns the cached local path for a module asset reference.
func (s *Store) LookupAsset(ctx context.Context, moduleID, ref string) (Asset, error) {
	var asset Asset
	var fetched string
	err := s.db.QueryRowContext(ctx,
		`SELECT module_id, ref, local_path, fetched_at FROM assets WHERE module_id = ? AND ref = ?`,
		moduleID, ref).Scan(&asset.ModuleID, &asset.Ref, &asset.LocalPath, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, services.Wrap(services.ErrNotFound, "history", "lookup asset", fmt.Sprintf("module %s ref %s", moduleID, ref), nil)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("lookup asset: %w", err)
	}
	asset.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetched)
	return asset, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
