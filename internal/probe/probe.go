// Package probe samples the head of a CSV file, guesses a logical kind for
// each column and drafts a pipeline file that loads it.
//
// Inference is a heuristic over the sampled rows only: a column gets the
// narrowest kind every non-null sample satisfies, tried in the order int,
// bool, float, timestamp, date, string.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"csvetl/internal/config"
	"csvetl/internal/datasource"
	csvparser "csvetl/internal/parser/csv"
	"csvetl/pkg/records"
)

// DefaultMaxBytes is the sample size used when Options.MaxBytes is zero.
const DefaultMaxBytes = 1 << 20

// Options control sampling and the drafted pipeline.
type Options struct {
	// MaxBytes to read from the start of the source.
	MaxBytes int
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Name seeds the job and table names. Empty uses the source file name.
	Name string
}

// Column is the inferred shape of one source column.
type Column struct {
	// Header as it appears in the file.
	Header string
	// Name is Header turned into a SQL identifier.
	Name   string
	Kind   records.Kind
	Layout string
	// Nulls counts sampled rows without a value.
	Nulls int
}

// Report is the result of probing one source.
type Report struct {
	Source  string
	Name    string
	Comma   rune
	Rows    int
	Columns []Column
	// Truncated is set when the sample stopped before the end of the source.
	Truncated bool
}

// Probe samples src and infers its columns.
func Probe(ctx context.Context, src datasource.Source, opt Options) (Report, error) {
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	if opt.Comma == 0 {
		opt.Comma = ','
	}

	sample, truncated, err := readSample(ctx, src, opt.MaxBytes)
	if err != nil {
		return Report{}, err
	}

	p := csvparser.NewParser(csvparser.Options{
		Comma:      opt.Comma,
		TrimSpace:  true,
		LazyQuotes: true,
	})
	tbl, err := p.Parse(bytes.NewReader(sample))
	if err != nil {
		return Report{}, fmt.Errorf("probe %s: %w", src.Name(), err)
	}

	name := opt.Name
	if name == "" {
		name = baseName(src.Name())
	}
	return Report{
		Source:    src.Name(),
		Name:      Identifier(name),
		Comma:     opt.Comma,
		Rows:      tbl.Len(),
		Columns:   inferColumns(tbl),
		Truncated: truncated,
	}, nil
}

// readSample returns up to n bytes of src, cut back to the last complete
// line when the source is longer.
func readSample(ctx context.Context, src datasource.Source, n int) ([]byte, bool, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	buf, err := io.ReadAll(io.LimitReader(rc, int64(n)+1))
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	if len(buf) <= n {
		return buf, false, nil
	}
	buf = buf[:n]
	if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i+1]
	}
	return buf, true, nil
}

func inferColumns(tbl *records.Table) []Column {
	used := make(map[string]int, len(tbl.Columns))
	out := make([]Column, 0, len(tbl.Columns))
	for _, h := range tbl.Columns {
		var vals []string
		nulls := 0
		for _, v := range tbl.Column(h) {
			s, ok := v.(string)
			if !ok || s == "" {
				nulls++
				continue
			}
			vals = append(vals, s)
		}
		kind, layout := inferKind(vals)

		name := Identifier(h)
		if n := used[name]; n > 0 {
			used[name]++
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			used[name] = 1
		}
		out = append(out, Column{Header: h, Name: name, Kind: kind, Layout: layout, Nulls: nulls})
	}
	return out
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	for _, ext := range []string{".gz", ".csv", ".tsv", ".txt"} {
		path = strings.TrimSuffix(strings.ToLower(path), ext)
	}
	return path
}

// Pipeline drafts a pipeline that loads the probed file into table. Headers
// are mapped to identifiers, cells are normalized, and non-string columns
// are coerced with unparsable values read as null.
func (r Report) Pipeline(table string) config.Pipeline {
	if table == "" {
		table = r.Name
	}

	headerMap := map[string]string{}
	types := map[string]string{}
	layouts := map[string]string{}
	for _, c := range r.Columns {
		if c.Header != c.Name {
			headerMap[c.Header] = c.Name
		}
		if c.Kind == records.KindString {
			continue
		}
		types[c.Name] = string(c.Kind)
		if c.Layout != "" {
			layouts[c.Name] = c.Layout
		}
	}

	parserOpts := config.Options{"trim_space": true}
	if r.Comma != 0 && r.Comma != ',' {
		parserOpts["comma"] = string(r.Comma)
	}
	if len(headerMap) > 0 {
		parserOpts["header_map"] = headerMap
	}

	steps := []config.Transform{{Kind: "normalize", Options: config.Options{}}}
	if len(types) > 0 {
		coerce := config.Options{"types": types, "on_error": "null"}
		if len(layouts) > 0 {
			coerce["layouts"] = layouts
		}
		steps = append(steps, config.Transform{Kind: "coerce", Options: coerce})
	}

	return config.Pipeline{
		Job:        r.Name,
		SourcePath: r.Source,
		TableName:  table,
		Parser:     config.Parser{Kind: "csv", Options: parserOpts},
		Transform:  steps,
		Load:       config.LoadSpec{Mode: config.ModeAppend, BatchSize: config.DefaultBatchSize},
	}
}
