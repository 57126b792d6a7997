// Package sqlite implements a SQLite-backed storage.Repository on
// database/sql with the pure-Go modernc.org/sqlite driver. SQLite has no bulk
// load API; rows go through one prepared INSERT per batch inside the single
// load transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	gddl "csvetl/internal/ddl"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string

	// Params are appended to the DSN as query parameters, e.g.
	// {"_pragma": "busy_timeout(5000)"}.
	Params map[string]string
}

// DSN renders the driver connection string.
func (c Config) DSN() string {
	if len(c.Params) == 0 {
		return c.Path
	}
	q := url.Values{}
	for k, v := range c.Params {
		q.Set(k, v)
	}
	return c.Path + "?" + q.Encode()
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db   *sql.DB
	tx   *sql.Tx
	cfg  Config
	done bool
}

// NewRepository opens the database, checks it with a ping, and begins the
// load transaction.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("sqlite: database path must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: an in-memory database exists per connection, and the
	// load runs in a single transaction anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", cfg.Path, err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return &Repository{db: db, tx: tx, cfg: cfg}, nil
}

// Exec executes a statement (typically DDL) inside the transaction.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.tx.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// CopyFrom inserts rows into table (e.g. "listings" or "main.listings")
// through a prepared INSERT. len(row) must equal len(columns) for every row.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	stmt, err := r.tx.PrepareContext(ctx, insertSQL(table, columns))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	args := make([]any, len(columns))
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		for i, v := range row {
			args[i] = toSQLite(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// Commit commits the load transaction.
func (r *Repository) Commit(context.Context) error {
	if r.done {
		return fmt.Errorf("sqlite: transaction already finished")
	}
	r.done = true
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Close rolls back an unfinished transaction and closes the database.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	if !r.done {
		r.done = true
		_ = r.tx.Rollback()
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = gddl.QuoteDouble(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		gddl.QuoteFQN(table, gddl.QuoteDouble),
		strings.Join(cols, ", "),
		strings.Join(marks, ", "),
	)
}

// toSQLite stores dates as YYYY-MM-DD, other instants as RFC 3339 and
// booleans as 0/1, matching the TEXT and INTEGER affinities MapType picks.
func toSQLite(v any) any {
	switch t := v.(type) {
	case time.Time:
		if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339Nano)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}
