package mysql

import (
	"context"

	"csvetl/internal/storage"
	myddl "csvetl/internal/storage/mysql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return newRepository(ctx, Config{
			DSN: DSN(cfg.Database),
		})
	})
	storage.RegisterDDL("mysql", myddl.EnsureTable)
}
