package builtin

import (
	"testing"

	"csvetl/pkg/records"
)

// table builds a string table; row i gets source line i+2.
func table(t *testing.T, cols []string, rows ...records.Record) *records.Table {
	t.Helper()
	tbl := records.New(cols...)
	for i, r := range rows {
		tbl.Rows = append(tbl.Rows, records.Row{Line: i + 2, Values: r})
	}
	return tbl
}

func column(tbl *records.Table, name string) []any { return tbl.Column(name) }
