package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type historyStore struct {
	db *sql.DB
	mu sync.Mutex
}

func openHistoryStore(path string) (*historyStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open failed for %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout failed for %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS comparison_runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			monday_ref TEXT NOT NULL DEFAULT '',
			friday_ref TEXT NOT NULL DEFAULT '',
			monday_count INTEGER NOT NULL DEFAULT 0,
			friday_count INTEGER NOT NULL DEFAULT 0,
			result TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create comparison_runs failed: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_comparison_runs_created ON comparison_runs(created_at DESC);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create comparison_runs index failed: %w", err)
	}
	return &historyStore{db: db}, nil
}

func isRetryableSQLiteError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database is busy") ||
		strings.Contains(msg, "sqlite_busy")
}

func withSQLiteRetry(op func() error) error {
	var err error
	backoff := 50 * time.Millisecond
	for i := 0; i < 4; i++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isRetryableSQLiteError(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

func (s *historyStore) Close() error {
	return s.db.Close()
}

func (s *historyStore) RecordRun(run historyRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return withSQLiteRetry(func() error {
		_, err := s.db.Exec(`
			INSERT INTO comparison_runs (id, kind, created_at, monday_ref, friday_ref, monday_count, friday_count, result)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Kind, run.CreatedAt, run.MondayRef, run.FridayRef, run.MondayCount, run.FridayCount, run.Result,
		)
		return err
	})
}

// RecentRuns returns up to limit runs, newest first.
func (s *historyStore) RecentRuns(limit int) ([]historyRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs := make([]historyRun, 0)
	err := withSQLiteRetry(func() error {
		runs = runs[:0]
		rows, err := s.db.Query(`
			SELECT id, kind, created_at, monday_ref, friday_ref, monday_count, friday_count, result
			FROM comparison_runs
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r historyRun
			if err := rows.Scan(&r.ID, &r.Kind, &r.CreatedAt, &r.MondayRef, &r.FridayRef, &r.MondayCount, &r.FridayCount, &r.Result); err != nil {
				return err
			}
			runs = append(runs, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}
