package ddl

import (
	"fmt"
	"strings"

	"csvetl/pkg/records"
)

// FromTable derives a TableDef from a cleaned record table. Column order and
// kinds come from tbl; mapType turns each kind into a SQL type. Columns in pk
// become the primary key and, like the columns in notNull, NOT NULL. Every
// other column is nullable.
func FromTable(fqn string, tbl *records.Table, mapType TypeMapper, pk, notNull []string) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if tbl == nil || len(tbl.Columns) == 0 {
		return TableDef{}, fmt.Errorf("ddl: table %s has no columns", fqn)
	}

	pkSet, err := columnSet(tbl, pk, "primary key")
	if err != nil {
		return TableDef{}, err
	}
	nnSet, err := columnSet(tbl, notNull, "not null")
	if err != nil {
		return TableDef{}, err
	}

	td := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(tbl.Columns))}
	for _, name := range tbl.Columns {
		_, isPK := pkSet[name]
		_, isNN := nnSet[name]
		td.Columns = append(td.Columns, ColumnDef{
			Name:       name,
			SQLType:    mapType(string(tbl.Kind(name))),
			Nullable:   !isPK && !isNN,
			PrimaryKey: isPK,
		})
	}
	return td, nil
}

func columnSet(tbl *records.Table, names []string, role string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !tbl.HasColumn(n) {
			return nil, fmt.Errorf("ddl: %s column %q is not in the table", role, n)
		}
		set[n] = struct{}{}
	}
	return set, nil
}
