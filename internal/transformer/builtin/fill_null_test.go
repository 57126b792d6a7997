package builtin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvetl/internal/config"
	csvparser "csvetl/internal/parser/csv"
	"csvetl/pkg/records"
)

func reviews(t *testing.T) *records.Table {
	tbl := table(t, []string{"id", "reviews_per_month"},
		records.Record{"id": "1", "reviews_per_month": 0.21},
		records.Record{"id": "2", "reviews_per_month": nil},
		records.Record{"id": "3", "reviews_per_month": 1.5},
	)
	tbl.SetKind("reviews_per_month", records.KindFloat)
	return tbl
}

func TestFlagMissingThenFillNull(t *testing.T) {
	t.Parallel()

	tbl := reviews(t)
	flag, err := NewFlagMissing(config.Options{"columns": map[string]any{"reviews_per_month": "missing_reviews_per_month"}})
	require.NoError(t, err)
	fill, err := NewFillNull(config.Options{"values": map[string]any{"reviews_per_month": 0.0}})
	require.NoError(t, err)

	require.NoError(t, flag.Apply(tbl))
	require.NoError(t, fill.Apply(tbl))

	assert.Equal(t, []string{"id", "reviews_per_month", "missing_reviews_per_month"}, tbl.Columns)
	assert.Equal(t, records.KindInt, tbl.Kind("missing_reviews_per_month"))
	assert.Equal(t, []any{int64(0), int64(1), int64(0)}, column(tbl, "missing_reviews_per_month"))
	assert.Equal(t, []any{0.21, 0.0, 1.5}, column(tbl, "reviews_per_month"))
}

func TestFillNullThenFlagMissing_FlagsNothing(t *testing.T) {
	t.Parallel()

	tbl := reviews(t)
	fill := &FillNull{Values: map[string]any{"reviews_per_month": 0.0}}
	flag := &FlagMissing{Columns: map[string]string{"reviews_per_month": "missing"}}
	require.NoError(t, fill.Apply(tbl))
	require.NoError(t, flag.Apply(tbl))
	assert.Equal(t, []any{int64(0), int64(0), int64(0)}, column(tbl, "missing"))
}

func TestFillNull_ConvertsDefaultToKind(t *testing.T) {
	t.Parallel()

	tbl := table(t, []string{"n", "s"},
		records.Record{"n": nil, "s": nil},
	)
	tbl.SetKind("n", records.KindInt)
	// JSON numbers decode as float64.
	fill, err := NewFillNull(config.Options{"values": map[string]any{"n": 3.0, "s": "unknown"}})
	require.NoError(t, err)
	require.NoError(t, fill.Apply(tbl))
	assert.Equal(t, int64(3), tbl.Rows[0].Values["n"])
	assert.Equal(t, "unknown", tbl.Rows[0].Values["s"])

	bad := &FillNull{Values: map[string]any{"n": "many"}}
	assert.ErrorContains(t, bad.Apply(tbl), `column "n" default: "many" is not an int`)
}

func TestFlagMissing_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFlagMissing(config.Options{})
	assert.Error(t, err)
	_, err = NewFillNull(config.Options{})
	assert.Error(t, err)

	f := &FlagMissing{Columns: map[string]string{"id": "reviews_per_month"}}
	assert.EqualError(t, f.Apply(reviews(t)), `column "reviews_per_month" already exists`)
	f = &FlagMissing{Columns: map[string]string{"nope": "x"}}
	assert.EqualError(t, f.Apply(reviews(t)), `column "nope" not found`)
}

// An empty cell that is not one of the parser's null values must be both
// flagged and filled.
func TestFlagMissingThenFillNull_EmptyCell(t *testing.T) {
	t.Parallel()

	p := csvparser.NewParser(csvparser.Options{NullValues: []string{"NA"}})
	tbl, err := p.Parse(strings.NewReader("id,r\n1,\n2,NA\n3,x\n"))
	require.NoError(t, err)
	require.Equal(t, []any{"", nil, "x"}, column(tbl, "r"))

	flag := &FlagMissing{Columns: map[string]string{"r": "r_missing"}}
	fill := &FillNull{Values: map[string]any{"r": "0"}}
	require.NoError(t, flag.Apply(tbl))
	require.NoError(t, fill.Apply(tbl))

	assert.Equal(t, []any{int64(1), int64(1), int64(0)}, column(tbl, "r_missing"))
	assert.Equal(t, []any{"0", "0", "x"}, column(tbl, "r"))
}
