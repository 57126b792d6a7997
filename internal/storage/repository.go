// Package storage contains the storage-agnostic contracts of the Loader: the
// Repository a backend implements, a factory registry keyed by driver name,
// DDL bootstrappers, and the batched, transactional Load.
//
// Backends register themselves from init; importing
// csvetl/internal/storage/all enables every built-in backend.
package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"csvetl/internal/config"
)

// Repository is one open connection with one open transaction on the target
// database. Everything executed through it becomes visible only after Commit.
type Repository interface {
	// Exec runs a single statement (typically DDL). Callers issue every
	// Exec before the first CopyFrom: backends whose DDL commits implicitly
	// run it ahead of the load transaction.
	Exec(ctx context.Context, sql string) error

	// CopyFrom bulk-inserts rows (aligned to columns) into table
	// table and returns the number of rows the backend reports as inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Commit commits the transaction.
	Commit(ctx context.Context) error

	// Close rolls back anything not committed and releases the connection.
	// It is safe to call after Commit and more than once.
	Close() error
}

// Config selects a backend and tells it where to connect.
type Config struct {
	// Kind is the backend name: postgres, mysql, mssql or sqlite.
	Kind string

	// Database holds the connection parameters.
	Database config.Database
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository through the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for %q (have %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds lists the registered backends, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
