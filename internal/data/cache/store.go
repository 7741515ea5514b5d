package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists extraction documents keyed by file path. An entry is only
// served back while the file's modification time and the document format
// version both still match.
type Store struct {
	path          string
	formatVersion int
	db            *sql.DB
	mu            sync.Mutex
}

func Open(path string, formatVersion int) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("cache path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts between scan workers and watch mode.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, formatVersion: formatVersion, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get returns the cached payload for path when it was stored for the same
// modification time and format version.
func (s *Store) Get(ctx context.Context, path string, mtime time.Time) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM results WHERE path = ? AND mtime_ns = ? AND format_version = ?`,
		path, mtime.UnixNano(), s.formatVersion,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached result %q: %w", path, err)
	}
	return payload, true, nil
}

// Put stores or replaces the payload for path.
func (s *Store) Put(ctx context.Context, path string, mtime time.Time, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
INSERT INTO results (path, mtime_ns, format_version, payload, updated_at_utc)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  mtime_ns=excluded.mtime_ns,
  format_version=excluded.format_version,
  payload=excluded.payload,
  updated_at_utc=excluded.updated_at_utc
`
	return s.withRetry("save cached result", func() error {
		_, err := s.db.ExecContext(ctx, query,
			path, mtime.UnixNano(), s.formatVersion, payload, time.Now().UTC().Format(time.RFC3339Nano))
		return err
	})
}

// Delete drops the entry for path, if any.
func (s *Store) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withRetry("delete cached result", func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE path = ?`, path)
		return err
	})
}

// Prune removes entries whose path is rejected by keep, along with entries
// written by another format version. It returns the number removed.
func (s *Store) Prune(ctx context.Context, keep func(path string) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT path, format_version FROM results`)
	if err != nil {
		return 0, fmt.Errorf("list cached results: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		var version int
		if err := rows.Scan(&path, &version); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan cached result: %w", err)
		}
		if version != s.formatVersion || !keep(path) {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range stale {
		err := s.withRetry("prune cached result", func() error {
			_, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE path = ?`, path)
			return err
		})
		if err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// Len returns the number of stored entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cached results: %w", err)
	}
	return n, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
