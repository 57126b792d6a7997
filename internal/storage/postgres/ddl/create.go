package ddl

import (
	"context"
	"fmt"

	gddl "csvetl/internal/ddl"
	"csvetl/internal/storage"
)

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// with double-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, gddl.QuoteDouble)
}

// EnsureTable creates the target table if it does not exist, dropping it
// first when spec.Replace. Postgres DDL is transactional, so both statements
// commit or roll back with the rows.
func EnsureTable(ctx context.Context, repo storage.Repository, spec storage.TableSpec) error {
	td, err := gddl.FromTable(spec.Table, spec.Source, MapType, spec.PrimaryKey, spec.NotNull)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	sql, err := BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	if spec.Replace {
		drop, err := gddl.BuildDropTableSQL(td.FQN, gddl.QuoteDouble)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
