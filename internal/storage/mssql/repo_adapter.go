package mssql

import (
	"context"

	"csvetl/internal/storage"
	msddl "csvetl/internal/storage/mssql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return newRepository(ctx, Config{
			DSN: DSN(cfg.Database),
		})
	})
	storage.RegisterDDL("mssql", msddl.EnsureTable)
}
