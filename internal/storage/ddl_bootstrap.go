package storage

import (
	"context"
	"fmt"
	"sync"

	"csvetl/pkg/records"
)

// TableSpec describes the target table derived from the cleaned record table.
type TableSpec struct {
	// Table is the target table name, optionally schema qualified.
	Table string

	// Source supplies the column order and kinds.
	Source *records.Table

	// PrimaryKey columns; they are also NOT NULL.
	PrimaryKey []string

	// NotNull columns, typically those a require transform guarantees.
	NotNull []string

	// Replace drops the table before creating it.
	Replace bool
}

// DDLBootstrapper is a backend-specific function that derives a table
// definition from spec and applies it via repo.Exec (DROP when
// spec.Replace, then CREATE ... IF NOT EXISTS or its dialect equivalent).
type DDLBootstrapper func(ctx context.Context, repo Repository, spec TableSpec) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for kind and invokes it.
func EnsureTable(ctx context.Context, kind string, repo Repository, spec TableSpec) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for kind %q", kind)
	}
	return fn(ctx, repo, spec)
}
