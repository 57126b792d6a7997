package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

func TestFlagMissing(t *testing.T) {
	tbl := table(t, []string{"id", "reviews_per_month"},
		records.Record{"id": "1", "reviews_per_month": 0.21},
		records.Record{"id": "2", "reviews_per_month": nil},
		records.Record{"id": "3", "reviews_per_month": ""},
	)

	f, err := NewFlagMissing(config.Options{"columns": map[string]any{"reviews_per_month": "missing_reviews"}})
	require.NoError(t, err)
	require.NoError(t, f.Apply(tbl))

	assert.Equal(t, []string{"id", "reviews_per_month", "missing_reviews"}, tbl.Columns)
	assert.Equal(t, records.KindInt, tbl.Kind("missing_reviews"))
	assert.Equal(t, []any{int64(0), int64(1), int64(1)}, column(tbl, "missing_reviews"))
	// source column is untouched
	assert.Equal(t, []any{0.21, nil, ""}, column(tbl, "reviews_per_month"))
}
