// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "csvetl/internal/ddl"
	"csvetl/internal/storage"
)

// BuildCreateTableSQL returns a T-SQL script that creates the table if it
// does not already exist:
//
//	IF OBJECT_ID(N'[dbo].[listings]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[listings] (
//	    [id] BIGINT NOT NULL,
//	    PRIMARY KEY ([id])
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	def := gddl.TableDef{FQN: t.FQN, Columns: make([]gddl.ColumnDef, len(t.Columns))}
	for i, c := range t.Columns {
		if c.PrimaryKey {
			c.SQLType = keyType(c.SQLType)
		}
		def.Columns[i] = c
	}
	cols, err := gddl.ColumnClauses(def, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	fqn := gddl.QuoteFQN(t.FQN, quoteIdent)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		escapeLiteral(fqn),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// BuildDropTableSQL returns a guarded DROP TABLE.
func BuildDropTableSQL(fqn string) (string, error) {
	q := gddl.QuoteFQN(fqn, quoteIdent)
	if q == "" {
		return "", fmt.Errorf("mssql ddl: table FQN must not be empty")
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL\n  DROP TABLE %s;", escapeLiteral(q), q), nil
}

// EnsureTable creates the target table if needed, dropping it first when
// spec.Replace.
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
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

// quoteIdent quotes a single identifier segment with brackets, escaping
// closing brackets: weird]id -> [weird]]id].
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func escapeLiteral(s string) string { return strings.ReplaceAll(s, "'", "''") }
