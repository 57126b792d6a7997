package ddl

import (
	"context"
	"fmt"

	gddl "csvetl/internal/ddl"
	"csvetl/internal/storage"
)

// quoteIdent uses double quotes; dotted names such as "main.listings" are
// quoted per segment.
var quoteIdent gddl.QuoteFunc = gddl.QuoteDouble

// BuildCreateTableSQL returns
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  PRIMARY KEY ("pk1")
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, quoteIdent)
}

// BuildDropTableSQL returns DROP TABLE IF EXISTS "table";.
func BuildDropTableSQL(fqn string) (string, error) {
	return gddl.BuildDropTableSQL(fqn, quoteIdent)
}

// EnsureTable derives the table definition from spec and applies it through
// repo: DROP first when spec.Replace, then CREATE TABLE IF NOT EXISTS.
func EnsureTable(ctx context.Context, repo storage.Repository, spec storage.TableSpec) error {
	td, err := gddl.FromTable(spec.Table, spec.Source, MapType, spec.PrimaryKey, spec.NotNull)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	create, err := BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	if spec.Replace {
		drop, err := BuildDropTableSQL(td.FQN)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	if err := repo.Exec(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}
