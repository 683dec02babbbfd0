package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome values recorded when a session ends.
const (
	OutcomeRunning       = "running"
	OutcomeInterrupted   = "interrupted"
	OutcomeServerExited  = "server_exited"
	OutcomeFailed        = "failed"
	OutcomeAlreadyActive = "already_running"
)

// Session is one launcher run.
type Session struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time
	Mode          string
	URL           string
	InitialOnline bool
	PID           int
	Outcome       string
	ErrorMessage  string
}

// Duration returns how long the session ran, or zero while it is running.
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// TransitionRecord is a persisted connectivity change.
type TransitionRecord struct {
	ID        int64
	SessionID string
	Online    bool
	At        time.Time
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas below are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginSession records the start of a run.
func (s *Store) BeginSession(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("begin session: empty id")
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	return s.exec(ctx, `INSERT INTO sessions (id, started_at, mode, url, initial_online, pid, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		formatTime(session.StartedAt),
		session.Mode,
		session.URL,
		boolToInt(session.InitialOnline),
		session.PID,
		OutcomeRunning,
	)
}

// SetSessionURL stores the URL the server ended up on.
func (s *Store) SetSessionURL(ctx context.Context, id, url string) error {
	return s.exec(ctx, `UPDATE sessions SET url = ? WHERE id = ?`, url, id)
}

// SetInitialOnline stores the startup connectivity result.
func (s *Store) SetInitialOnline(ctx context.Context, id string, online bool) error {
	return s.exec(ctx, `UPDATE sessions SET initial_online = ? WHERE id = ?`, boolToInt(online), id)
}

// EndSession records the outcome of a run.
func (s *Store) EndSession(ctx context.Context, id, outcome string, runErr error, endedAt time.Time) error {
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	return s.exec(ctx, `UPDATE sessions SET ended_at = ?, outcome = ?, error_message = ? WHERE id = ?`,
		formatTime(endedAt), outcome, message, id)
}

// RecordTransition appends a connectivity change to a session.
func (s *Store) RecordTransition(ctx context.Context, sessionID string, online bool, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	return s.exec(ctx, `INSERT INTO transitions (session_id, online, at) VALUES (?, ?, ?)`,
		sessionID, boolToInt(online), formatTime(at))
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, ended_at, mode, url, initial_online, pid, outcome, error_message
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			session Session
			started string
			ended   sql.NullString
			initial int
		)
		if err := rows.Scan(&session.ID, &started, &ended, &session.Mode, &session.URL,
			&initial, &session.PID, &session.Outcome, &session.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt = parseTime(started)
		if ended.Valid {
			session.EndedAt = parseTime(ended.String)
		}
		session.InitialOnline = initial != 0
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// RecentTransitions returns up to limit transitions across sessions, newest first.
func (s *Store) RecentTransitions(ctx context.Context, limit int) ([]TransitionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, online, at
		FROM transitions ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var records []TransitionRecord
	for rows.Next() {
		var (
			record TransitionRecord
			online int
			at     string
		)
		if err := rows.Scan(&record.ID, &record.SessionID, &online, &at); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		record.Online = online != 0
		record.At = parseTime(at)
		records = append(records, record)
	}
	return records, rows.Err()
}

// PruneBefore deletes sessions (and their transitions) that started before
// cutoff. It returns the number of sessions removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ? AND outcome != ?`,
			formatTime(cutoff), OutcomeRunning)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return affected, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
