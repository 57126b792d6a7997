// Package postgres implements a Postgres repository using pgx v5. The load
// runs on one connection inside one transaction; rows are written with the
// COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"csvetl/internal/config"
)

// Config holds Postgres repository configuration.
type Config struct {
	ConnString string // pgx connection string (URL or key=value)
}

// ConnString renders d as a postgres:// URL. Params become query parameters
// next to sslmode.
func ConnString(d config.Database) string {
	q := url.Values{}
	for k, v := range d.Params {
		q.Set(k, v)
	}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(port)),
		Path:     "/" + d.Database,
		RawQuery: q.Encode(),
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	conn *pgx.Conn
	tx   pgx.Tx
	cfg  Config
}

// NewRepository connects and begins the load transaction.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	conn, err := pgx.Connect(ctx, cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("pgx connect: %w", err)
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Repository{conn: conn, tx: tx, cfg: cfg}, nil
}

// Exec runs sql inside the transaction.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.tx.Exec(ctx, sql); err != nil {
		return pgError("exec", err)
	}
	return nil
}

// CopyFrom streams rows into table (e.g. "public.listings") with COPY. pgx encodes the
// record values (int64, float64, bool, time.Time, string) per column type.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := r.tx.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, pgError("copy into "+table, err)
	}
	return n, nil
}

// Commit commits the transaction.
func (r *Repository) Commit(ctx context.Context) error {
	if err := r.tx.Commit(ctx); err != nil {
		return pgError("commit", err)
	}
	return nil
}

// Close rolls back an uncommitted transaction and closes the connection.
func (r *Repository) Close() error {
	if r.conn == nil {
		return nil
	}
	ctx := context.Background()
	if err := r.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		_ = r.conn.Close(ctx)
		r.conn = nil
		return fmt.Errorf("rollback: %w", err)
	}
	err := r.conn.Close(ctx)
	r.conn = nil
	return err
}

// pgError adds the server's detail and SQLSTATE to err when available.
func pgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s: %w (%s; SQLSTATE %s)", op, err, pgErr.Detail, pgErr.SQLState())
	}
	return fmt.Errorf("%s: %w", op, err)
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}
