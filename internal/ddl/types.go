package ddl

// ColumnDef describes a single column of a target table.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 0, CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (FQN, dotted form such as "public.listings")
// and its ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// QuoteFunc quotes a single identifier segment for a SQL dialect.
type QuoteFunc func(string) string

// TypeMapper maps a column kind onto a dialect SQL type.
type TypeMapper func(kind string) string
