package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "csvetl/internal/ddl"
	"csvetl/internal/storage"
)

// keyLength bounds TEXT key columns; MySQL cannot index TEXT without a
// prefix length.
const keyLength = 255

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement with
// backtick-quoted identifiers. TEXT primary key columns become
// VARCHAR(255).
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	def := gddl.TableDef{FQN: t.FQN, Columns: make([]gddl.ColumnDef, len(t.Columns))}
	for i, c := range t.Columns {
		if c.PrimaryKey && strings.EqualFold(c.SQLType, "TEXT") {
			c.SQLType = fmt.Sprintf("VARCHAR(%d)", keyLength)
		}
		def.Columns[i] = c
	}
	sql, err := gddl.BuildCreateTableSQL(def, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("mysql %w", err)
	}
	return sql, nil
}

// EnsureTable creates the target table if needed, dropping it first when
// spec.Replace. MySQL commits DDL implicitly, so the mysql repository runs
// these statements before it opens the load transaction. A failed load
// therefore rolls back every inserted row but leaves the (re)created, empty
// table in place.
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
		drop, err := gddl.BuildDropTableSQL(td.FQN, quoteIdent)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	if err := repo.Exec(ctx, create); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

// QuoteIdent quotes one identifier segment with backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

var quoteIdent gddl.QuoteFunc = QuoteIdent
