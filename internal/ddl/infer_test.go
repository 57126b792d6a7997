package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvetl/pkg/records"
)

func upperKind(kind string) string { return "T_" + kind }

func TestFromTable(t *testing.T) {
	t.Parallel()

	tbl := records.New("id", "name", "price", "last_review")
	tbl.SetKind("id", records.KindInt)
	tbl.SetKind("price", records.KindInt)
	tbl.SetKind("last_review", records.KindDate)

	td, err := FromTable("public.listings", tbl, upperKind, []string{"id"}, []string{"price"})
	require.NoError(t, err)

	assert.Equal(t, TableDef{
		FQN: "public.listings",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "T_int", PrimaryKey: true},
			{Name: "name", SQLType: "T_string", Nullable: true},
			{Name: "price", SQLType: "T_int"},
			{Name: "last_review", SQLType: "T_date", Nullable: true},
		},
	}, td)
}

func TestFromTable_Errors(t *testing.T) {
	t.Parallel()

	tbl := records.New("id")

	_, err := FromTable("", tbl, upperKind, nil, nil)
	assert.ErrorContains(t, err, "FQN must not be empty")

	_, err = FromTable("t", records.New(), upperKind, nil, nil)
	assert.ErrorContains(t, err, "has no columns")

	_, err = FromTable("t", tbl, upperKind, []string{"missing"}, nil)
	assert.ErrorContains(t, err, `primary key column "missing" is not in the table`)

	_, err = FromTable("t", tbl, upperKind, nil, []string{"nope"})
	assert.ErrorContains(t, err, `not null column "nope"`)
}
