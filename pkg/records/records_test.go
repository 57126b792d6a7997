package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := New("id", "name", "price")
	t.Rows = []Row{
		{Line: 2, Values: Record{"id": "1", "name": "Widget", "price": "10"}},
		{Line: 3, Values: Record{"id": "2", "name": "Gadget", "price": nil}},
	}
	return t
}

func TestTable_AddRenameDrop(t *testing.T) {
	t.Parallel()

	tbl := sample()
	require.NoError(t, tbl.AddColumn("flag", KindInt))
	assert.Equal(t, []string{"id", "name", "price", "flag"}, tbl.Columns)
	assert.Equal(t, KindInt, tbl.Kind("flag"))
	assert.Contains(t, tbl.Rows[0].Values, "flag")
	assert.Error(t, tbl.AddColumn("flag", KindInt))

	require.NoError(t, tbl.RenameColumn("price", "amount"))
	assert.Equal(t, "10", tbl.Rows[0].Values["amount"])
	assert.NotContains(t, tbl.Rows[0].Values, "price")
	assert.Error(t, tbl.RenameColumn("missing", "x"))
	assert.Error(t, tbl.RenameColumn("id", "name"))

	require.NoError(t, tbl.DropColumn("name"))
	assert.Equal(t, []string{"id", "amount", "flag"}, tbl.Columns)
	assert.NotContains(t, tbl.Rows[1].Values, "name")
	assert.Error(t, tbl.DropColumn("name"))
}

func TestTable_Filter(t *testing.T) {
	t.Parallel()

	tbl := sample()
	dropped := tbl.Filter(func(r Row) bool { return !IsNull(r.Values["price"]) })
	assert.Equal(t, 1, dropped)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, 2, tbl.Rows[0].Line)
}

func TestTable_ValuesAlignedToColumns(t *testing.T) {
	t.Parallel()

	tbl := sample()
	delete(tbl.Rows[1].Values, "name")
	assert.Equal(t, [][]any{
		{"1", "Widget", "10"},
		{"2", nil, nil},
	}, tbl.Values())
	assert.Equal(t, []any{"Widget", nil}, tbl.Column("name"))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	tbl := sample()
	cp := tbl.Clone()
	cp.Rows[0].Values["name"] = "Changed"
	cp.SetKind("id", KindInt)
	require.NoError(t, cp.AddColumn("extra", KindString))

	assert.Equal(t, "Widget", tbl.Rows[0].Values["name"])
	assert.Equal(t, KindString, tbl.Kind("id"))
	assert.False(t, tbl.HasColumn("extra"))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"int":      KindInt,
		"bigint":   KindInt,
		"double":   KindFloat,
		"boolean":  KindBool,
		"date":     KindDate,
		"time":     KindTime,
		"datetime": KindTimestamp,
		"text":     KindString,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("uuid")
	assert.Error(t, err)
}

func TestIsNullAndDate(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(""))
	assert.False(t, IsNull("x"))
	assert.False(t, IsNull(int64(0)))

	in := time.Date(2019, 5, 21, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2019, 5, 21, 0, 0, 0, 0, time.UTC), Date(in))
}
