package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/hitclient/packages/http"
)

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	at          TEXT NOT NULL,
	op          TEXT NOT NULL,
	kind        TEXT NOT NULL,
	input       TEXT NOT NULL,
	before_url  TEXT NOT NULL,
	after_url   TEXT NOT NULL,
	host        TEXT NOT NULL,
	credentials TEXT NOT NULL,
	error       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS transitions_host ON transitions(host);
`

// Entry is one journaled transition.
type Entry struct {
	ID          string    `json:"id"`
	At          time.Time `json:"at"`
	Op          string    `json:"op"`
	Kind        string    `json:"kind"`
	Input       string    `json:"input"`
	Before      string    `json:"before"`
	After       string    `json:"after"`
	Host        string    `json:"host"`
	Credentials string    `json:"credentials"`
	Error       string    `json:"error,omitempty"`
}

// Failed reports whether the transition was rejected.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Store is a SQLite-backed transition journal. It implements http.Observer.
type Store struct {
	db           *sql.DB
	dataSource   string
	queryTimeout time.Duration
	log          *logrus.Logger

	mu  sync.Mutex
	err error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used when an observed transition cannot be written.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithQueryTimeout bounds each statement.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.queryTimeout = d
	}
}

// Open opens (creating if needed) the journal at connectionString.
// Accepted forms: sqlite://path, sqlite:path, a bare file path, or ":memory:".
func Open(connectionString string, opts ...Option) (*Store, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// a single connection keeps ":memory:" journals coherent
	db.SetMaxOpenConns(1)

	l := logrus.New()
	l.Out = io.Discard
	s := &Store{
		db:           db,
		dataSource:   dsn,
		queryTimeout: 5 * time.Second,
		log:          l,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	return s, nil
}

// parseConnectionString accepts:
// - sqlite://path/to/history.db
// - sqlite:./history.db
// - ./history.db
// - :memory:
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)
	switch {
	case connStr == "":
		return "", errors.New("journal path is empty")
	case strings.HasPrefix(connStr, "sqlite://"):
		connStr = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		connStr = strings.TrimPrefix(connStr, "sqlite:")
	case strings.Contains(connStr, "://"):
		return "", fmt.Errorf("unsupported journal scheme in %q (only sqlite)", connStr)
	}
	if connStr == "" {
		return "", errors.New("journal path is empty")
	}
	return connStr, nil
}

// Close closes the journal.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record writes t and returns the stored entry.
func (s *Store) Record(ctx context.Context, t http.Transition) (Entry, error) {
	e := entryFromTransition(t)

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (id, at, op, kind, input, before_url, after_url, host, credentials, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UTC().Format(time.RFC3339Nano), e.Op, e.Kind, e.Input,
		e.Before, e.After, e.Host, e.Credentials, e.Error,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record transition: %w", err)
	}
	return e, nil
}

func entryFromTransition(t http.Transition) Entry {
	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	e := Entry{
		ID:          uuid.NewString(),
		At:          at,
		Op:          t.Op,
		Kind:        t.Kind.String(),
		Input:       t.Input,
		Before:      t.Before.Redacted(),
		After:       t.After.Redacted(),
		Host:        t.After.Host,
		Credentials: t.Credentials.String(),
	}
	if t.Err != nil {
		e.Error = t.Err.Error()
	}
	return e
}

// ObserveTransition records t, keeping the first failure for Err.
func (s *Store) ObserveTransition(t http.Transition) {
	if _, err := s.Record(context.Background(), t); err != nil {
		s.log.WithError(err).Warn("Failed to journal target transition")
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
}

// Err returns the first error hit while observing transitions.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Filter narrows List results.
type Filter struct {
	Host       string
	OnlyFailed bool
	Limit      int // 0 means no limit
}

// List returns journaled entries, most recent last.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := `SELECT seq, id, at, op, kind, input, before_url, after_url, host, credentials, error FROM transitions`
	var (
		where []string
		args  []any
	)
	if f.Host != "" {
		where = append(where, "host = ?")
		args = append(args, strings.ToLower(f.Host))
	}
	if f.OnlyFailed {
		where = append(where, "error <> ''")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Limit > 0 {
		// newest N, returned oldest first
		query = `SELECT * FROM (` + query + ` ORDER BY seq DESC LIMIT ?) ORDER BY seq`
		args = append(args, f.Limit)
	} else {
		query += " ORDER BY seq"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e   Entry
			seq int64
			at  string
		)
		if err := rows.Scan(&seq, &e.ID, &at, &e.Op, &e.Kind, &e.Input, &e.Before, &e.After, &e.Host, &e.Credentials, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", at, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
