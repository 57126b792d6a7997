package sqlite

import (
	"context"

	"csvetl/internal/storage"
	sqliteddl "csvetl/internal/storage/sqlite/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return newRepository(ctx, Config{
			Path:   cfg.Database.Database,
			Params: cfg.Database.Params,
		})
	})

	storage.RegisterDDL("sqlite", sqliteddl.EnsureTable)
}
