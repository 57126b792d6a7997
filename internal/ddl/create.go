// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE and DROP TABLE statements from it.
//
// The package does not know any dialect. Renderers take a QuoteFunc, and
// backend packages (internal/storage/<backend>/ddl) supply their quoting,
// type mapping and guard syntax (IF NOT EXISTS, IF OBJECT_ID, ...).
// ColumnDef.Default is emitted as raw SQL.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnClauses validates t and renders one clause per column followed by a
// PRIMARY KEY clause when any column is part of the key:
//
//	<quoted name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//	PRIMARY KEY (<pk1>, <pk2>)
func ColumnClauses(t TableDef, quote QuoteFunc) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	seen := make(map[string]struct{}, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("ddl: duplicate column %s in table %s", name, fqn)
		}
		seen[name] = struct{}{}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols, nil
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE IF NOT EXISTS <fqn> (
//	  <col1-def>,
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
//
// for dialects that support the IF NOT EXISTS guard (Postgres, MySQL,
// SQLite).
func BuildCreateTableSQL(t TableDef, quote QuoteFunc) (string, error) {
	cols, err := ColumnClauses(t, quote)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(t.FQN, quote),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS <fqn>;.
func BuildDropTableSQL(fqn string, quote QuoteFunc) (string, error) {
	q := QuoteFQN(fqn, quote)
	if q == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	return "DROP TABLE IF EXISTS " + q + ";", nil
}

// QuoteFQN quotes each dot-separated segment of a possibly schema-qualified
// name. Empty segments are skipped:
//
//	"public.listings" -> "public"."listings" (with a double-quote QuoteFunc)
func QuoteFQN(fqn string, quote QuoteFunc) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteDouble is ANSI identifier quoting, shared by Postgres and SQLite.
func QuoteDouble(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
