// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. The whole load runs in one transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"csvetl/internal/config"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// DSN renders d as a sqlserver:// URL; Params become query parameters next
// to database.
func DSN(d config.Database) string {
	q := url.Values{}
	for k, v := range d.Params {
		q.Set(k, v)
	}
	q.Set("database", d.Database)
	port := d.Port
	if port == 0 {
		port = 1433
	}
	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(port)),
		RawQuery: q.Encode(),
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db   *sql.DB
	tx   *sql.Tx
	cfg  Config
	done bool
}

// NewRepository validates the DSN, connects, and begins the transaction.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Repository{db: db, tx: tx, cfg: cfg}, nil
}

// CopyFrom bulk-inserts rows into table.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := r.tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement inside the transaction.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.tx.ExecContext(ctx, sqlText)
	return err
}

// Commit commits the transaction.
func (r *Repository) Commit(context.Context) error {
	if r.done {
		return fmt.Errorf("mssql: transaction already finished")
	}
	r.done = true
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close rolls back an uncommitted transaction and closes the pool.
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
