package postgres

import (
	"context"

	"csvetl/internal/storage"
	pgddl "csvetl/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace it to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

// init registers the "postgres" backend and its DDL bootstrapper.
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return newRepository(ctx, Config{
			ConnString: ConnString(cfg.Database),
		})
	})
	storage.RegisterDDL("postgres", pgddl.EnsureTable)
}
