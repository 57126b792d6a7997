// Package mysql implements a MySQL-backed storage.Repository with
// go-sql-driver/mysql. Rows are written with multi-row INSERT statements
// inside one transaction.
//
// MySQL commits DDL implicitly and ends any open transaction, so the
// repository pins one connection, runs Exec statements on it in autocommit
// mode, and begins the load transaction only with the first CopyFrom.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"csvetl/internal/config"
	gddl "csvetl/internal/ddl"
	myddl "csvetl/internal/storage/mysql/ddl"
)

// maxPlaceholders is the protocol limit on parameters per prepared statement.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN string
}

// DSN renders d with the driver's own formatter. Dates are scanned as
// time.Time.
func DSN(d config.Database) string {
	c := mysql.NewConfig()
	c.User = d.User
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = d.Addr()
	c.DBName = d.Database
	c.ParseTime = true
	if len(d.Params) > 0 {
		c.Params = make(map[string]string, len(d.Params))
		for k, v := range d.Params {
			c.Params[k] = v
		}
	}
	return c.FormatDSN()
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db   *sql.DB
	conn *sql.Conn
	tx   *sql.Tx // nil until the first CopyFrom
	cfg  Config
	done bool
}

// NewRepository parses the DSN, connects and pins one connection.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return newWithDB(ctx, db, cfg)
}

// newWithDB takes ownership of db.
func newWithDB(ctx context.Context, db *sql.DB, cfg Config) (*Repository, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: conn: %w", err)
	}
	return &Repository{db: db, conn: conn, cfg: cfg}, nil
}

// begin opens the load transaction once.
func (r *Repository) begin(ctx context.Context) error {
	if r.tx != nil {
		return nil
	}
	if r.done {
		return fmt.Errorf("mysql: transaction already finished")
	}
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: begin tx: %w", err)
	}
	r.tx = tx
	return nil
}

// CopyFrom inserts rows into table with as few multi-row INSERT statements as
// the placeholder limit allows.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if err := r.begin(ctx); err != nil {
		return 0, err
	}
	per := max(1, maxPlaceholders/len(columns))

	var total int64
	for lo := 0; lo < len(rows); lo += per {
		chunk := rows[lo:min(lo+per, len(rows))]
		query, args, err := insertSQL(table, columns, chunk)
		if err != nil {
			return total, err
		}
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("mysql: insert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("mysql: rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// Exec runs a statement on the pinned connection. Before the first
// CopyFrom it runs in autocommit mode, which is where DDL belongs; a DDL
// statement after that would commit the inserted rows, so it is refused.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if r.tx != nil {
		return fmt.Errorf("mysql: exec after inserts began would commit the load transaction")
	}
	if _, err := r.conn.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Commit commits the load transaction. Without any CopyFrom there is
// nothing to commit.
func (r *Repository) Commit(context.Context) error {
	if r.done {
		return fmt.Errorf("mysql: transaction already finished")
	}
	r.done = true
	if r.tx == nil {
		return nil
	}
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

// Close rolls back an uncommitted transaction and closes the connection and
// the pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	if !r.done {
		r.done = true
		if r.tx != nil {
			_ = r.tx.Rollback()
		}
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// insertSQL renders INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?) and
// flattens rows into its arguments.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		gddl.QuoteFQN(table, myddl.QuoteIdent), strings.Join(cols, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}
