package csv_test

import (
	stdcsv "encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvetl/internal/config"
	pcsv "csvetl/internal/parser/csv"
	"csvetl/pkg/records"
)

const listings = `id,name,host_id,neighbourhood,price,last_review,reviews_per_month
2539,Clean & quiet apt home by the park,2787,Kensington,149,2018-10-19,0.21
2595,Skylit Midtown Castle,2845,Midtown,225,2019-05-21,0.38
3647,THE VILLAGE OF HARLEM....NEW YORK !,4632,Harlem,150,,
`

func parse(t *testing.T, opt pcsv.Options, in string) (*records.Table, error) {
	t.Helper()
	return pcsv.NewParser(opt).Parse(strings.NewReader(in))
}

func TestParse_Listings(t *testing.T) {
	t.Parallel()

	tbl, err := parse(t, pcsv.Options{}, listings)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "host_id", "neighbourhood", "price", "last_review", "reviews_per_month"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	for _, c := range tbl.Columns {
		assert.Equal(t, records.KindString, tbl.Kind(c))
	}

	assert.Equal(t, "2539", tbl.Rows[0].Values["id"])
	assert.Equal(t, "Clean & quiet apt home by the park", tbl.Rows[0].Values["name"])
	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, 4, tbl.Rows[2].Line)

	// Empty cells become null but keep their key.
	v, ok := tbl.Rows[2].Values["last_review"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, tbl.Rows[2].Values["reviews_per_month"])
}

func TestParse_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  pcsv.Options
		in   string
		cols []string
		want []records.Record
	}{
		{
			name: "semicolon and trim",
			opt:  pcsv.Options{Comma: ';', TrimSpace: true},
			in:   "a ; b\n 1 ;  x \n",
			cols: []string{"a", "b"},
			want: []records.Record{{"a": "1", "b": "x"}},
		},
		{
			name: "custom null values",
			opt:  pcsv.Options{NullValues: []string{"NA", "-"}},
			in:   "a,b,c\nNA,-,\n",
			cols: []string{"a", "b", "c"},
			want: []records.Record{{"a": nil, "b": nil, "c": ""}},
		},
		{
			name: "header map and normalization",
			opt: pcsv.Options{
				HeaderMap:        map[string]string{"Datum od": "date_from"},
				NormalizeHeaders: true,
			},
			in:   "Datum od,Room Type\n2020-01-01,Private room\n",
			cols: []string{"date_from", "room_type"},
			want: []records.Record{{"date_from": "2020-01-01", "room_type": "Private room"}},
		},
		{
			name: "utf8 bom stripped",
			in:   "\uFEFFid,name\n1,x\n",
			cols: []string{"id", "name"},
			want: []records.Record{{"id": "1", "name": "x"}},
		},
		{
			name: "comments and blank lines",
			opt:  pcsv.Options{Comment: '#'},
			in:   "# exported\nid\n\n1\n# trailer\n2\n",
			cols: []string{"id"},
			want: []records.Record{{"id": "1"}, {"id": "2"}},
		},
		{
			name: "windows-1250 input",
			opt:  pcsv.Options{Encoding: "windows-1250"},
			in:   "mesto\n\x8Eilina\n",
			cols: []string{"mesto"},
			want: []records.Record{{"mesto": "Žilina"}},
		},
		{
			name: "byte sequence replacement",
			opt:  pcsv.Options{LazyQuotes: true, Replace: map[string]string{` "v likvidaci""`: ` (v likvidaci)"`}},
			in:   "id,name\n1,\"Firma \"v likvidaci\"\"\n",
			cols: []string{"id", "name"},
			want: []records.Record{{"id": "1", "name": "Firma (v likvidaci)"}},
		},
		{
			name: "header only",
			in:   "id,name\n",
			cols: []string{"id", "name"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tbl, err := parse(t, tt.opt, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.cols, tbl.Columns)
			var got []records.Record
			for _, r := range tbl.Rows {
				got = append(got, r.Values)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     pcsv.Options
		in      string
		wantErr string
	}{
		{"empty input", pcsv.Options{}, "", "csv input is empty"},
		{"bom only", pcsv.Options{}, "\uFEFF", "csv input is empty"},
		{"duplicate header", pcsv.Options{}, "id,name,id\n1,2,3\n", `duplicate column "id" (columns 1 and 3)`},
		{"duplicate after mapping", pcsv.Options{HeaderMap: map[string]string{"ID": "id"}}, "id,ID\n1,2\n", `duplicate column "id"`},
		{"empty header", pcsv.Options{}, "id, ,name\n1,2,3\n", "column 2 has no name"},
		{"short row", pcsv.Options{}, "a,b,c\n1,2,3\n4,5\n", "record on line 3: wrong number of fields"},
		{"long row", pcsv.Options{}, "a,b\n1,2,3\n", "record on line 2: wrong number of fields"},
		{"bare quote", pcsv.Options{}, "a,b\n1,x\"y\n", `bare " in non-quoted-field`},
		{"unknown encoding", pcsv.Options{Encoding: "klingon"}, "a\n1\n", `csv encoding "klingon"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parse(t, tt.opt, tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_FieldCountIsParseError(t *testing.T) {
	t.Parallel()

	_, err := parse(t, pcsv.Options{}, "a,b\n1,2\n3\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, stdcsv.ErrFieldCount)

	var pe *stdcsv.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
}

func TestOptionsFrom(t *testing.T) {
	t.Parallel()

	opt := pcsv.OptionsFrom(config.Options{
		"comma":       "|",
		"trim_space":  true,
		"null_values": []any{"", "NULL"},
		"header_map":  map[string]any{"Price": "price"},
		"replace":     map[string]any{"\x00": ""},
	})
	assert.Equal(t, '|', opt.Comma)
	assert.True(t, opt.TrimSpace)
	assert.False(t, opt.LazyQuotes)
	assert.Equal(t, []string{"", "NULL"}, opt.NullValues)
	assert.Equal(t, map[string]string{"Price": "price"}, opt.HeaderMap)
	assert.Equal(t, map[string]string{"\x00": ""}, opt.Replace)

	def := pcsv.OptionsFrom(config.Options{})
	assert.Equal(t, ',', def.Comma)
	assert.Nil(t, def.NullValues)
	assert.Nil(t, def.Replace)
}
