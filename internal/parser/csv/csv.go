// Package csv extracts a delimited text file into a records.Table.
//
// The first row is the header. Every later row must have exactly as many
// fields as the header; a mismatch is an error naming the line. Cells are
// kept as strings, and cells matching one of the configured null values
// become nil.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// ErrEmpty is returned for input without a header row.
var ErrEmpty = errors.New("csv input is empty")

// Options configures the parser. The zero value parses RFC 4180 UTF-8 with a
// comma delimiter and treats only empty cells as null.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// Comment, when non-zero, skips lines starting with this rune.
	Comment rune

	// TrimSpace trims leading and trailing white space from each cell before
	// the null check.
	TrimSpace bool

	// LazyQuotes tolerates bare quotes inside unquoted fields.
	LazyQuotes bool

	// NullValues are the cell contents read as null. Nil means {""}.
	NullValues []string

	// HeaderMap renames source headers (after trimming) to column names.
	HeaderMap map[string]string

	// NormalizeHeaders lowercases unmapped headers and replaces spaces with
	// underscores.
	NormalizeHeaders bool

	// Encoding names the input character set (e.g. "windows-1250"). Empty
	// means UTF-8. A byte order mark always wins over this setting.
	Encoding string

	// Replace rewrites known broken byte sequences before parsing.
	Replace map[string]string
}

// OptionsFrom reads parser options from a pipeline option bag.
//
//	comma, comment, encoding (string); trim_space, lazy_quotes,
//	normalize_headers (bool); null_values ([]string); header_map,
//	replace (object)
func OptionsFrom(o config.Options) Options {
	opt := Options{
		Comma:            o.Rune("comma", ','),
		Comment:          o.Rune("comment", 0),
		TrimSpace:        o.Bool("trim_space", false),
		LazyQuotes:       o.Bool("lazy_quotes", false),
		NullValues:       o.StringSlice("null_values"),
		HeaderMap:        o.StringMap("header_map"),
		NormalizeHeaders: o.Bool("normalize_headers", false),
		Encoding:         o.String("encoding", ""),
	}
	if o.Has("replace") {
		opt.Replace = o.StringMap("replace")
	}
	return opt
}

// Parser parses CSV input according to Options. It holds no per-input state
// and can be reused.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	nv := opt.NullValues
	if nv == nil {
		nv = []string{""}
	}
	nulls := make(map[string]struct{}, len(nv))
	for _, s := range nv {
		nulls[s] = struct{}{}
	}
	return &Parser{opt: opt, nulls: nulls}
}

// Parse reads all of r into a Table whose columns are the header names, all
// of kind string.
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	dec, err := p.decoder()
	if err != nil {
		return nil, err
	}
	r = transform.NewReader(r, unicode.BOMOverride(dec))
	if len(p.opt.Replace) > 0 {
		r = scrub(r, p.opt.Replace)
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.Comment = p.opt.Comment
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.ReuseRecord = true
	// FieldsPerRecord stays 0: encoding/csv pins the width to the header and
	// reports any other width as ErrFieldCount with the line number.

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers, err := p.headers(h)
	if err != nil {
		return nil, err
	}

	tbl := records.New(headers...)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if _, null := p.nulls[val]; null {
				rec[headers[i]] = nil
				continue
			}
			rec[headers[i]] = val
		}
		tbl.Rows = append(tbl.Rows, records.Row{Line: line, Values: rec})
	}
	return tbl, nil
}

func (p *Parser) decoder() (*encoding.Decoder, error) {
	if p.opt.Encoding == "" {
		return unicode.UTF8.NewDecoder(), nil
	}
	enc, err := htmlindex.Get(p.opt.Encoding)
	if err != nil {
		return nil, fmt.Errorf("csv encoding %q: %w", p.opt.Encoding, err)
	}
	return enc.NewDecoder(), nil
}

// headers produces column names from the header row. Names must be unique
// and non-empty after mapping.
func (p *Parser) headers(h []string) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if m, ok := p.opt.HeaderMap[c]; ok {
			c = m
		} else if p.opt.NormalizeHeaders {
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if c == "" {
			return nil, fmt.Errorf("csv header: column %d has no name", i+1)
		}
		if j, dup := seen[c]; dup {
			return nil, fmt.Errorf("csv header: duplicate column %q (columns %d and %d)", c, j+1, i+1)
		}
		seen[c] = i
		res[i] = c
	}
	return res, nil
}
