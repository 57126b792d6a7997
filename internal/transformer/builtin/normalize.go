package builtin

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// Normalize cleans string cells: non-breaking spaces become spaces, the text
// is trimmed and put in Unicode NFC, and an optional case mapping is applied.
// A cell that is empty after cleaning becomes null.
type Normalize struct {
	// Columns to clean. Empty means every column of kind string.
	Columns []string
	// Case maps a column to lower, upper or title.
	Case map[string]string
}

// NewNormalize reads columns ([]string) and case (object).
func NewNormalize(o config.Options) (*Normalize, error) {
	n := &Normalize{Columns: o.StringSlice("columns"), Case: o.StringMap("case")}
	for col, mode := range n.Case {
		if _, err := caser(mode); err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
	}
	return n, nil
}

func (*Normalize) Name() string { return "normalize" }

// mojibake is a UTF-8 NBSP that was decoded as Latin-1 somewhere upstream.
const mojibake = "\u00c2\u00a0"

var spaceFixer = strings.NewReplacer(mojibake, " ", "\u00a0", " ")

func (n *Normalize) Apply(t *records.Table) error {
	cols := n.Columns
	if len(cols) == 0 {
		for _, c := range t.Columns {
			if t.Kind(c) == records.KindString {
				cols = append(cols, c)
			}
		}
	}
	if err := requireColumns(t, cols...); err != nil {
		return err
	}
	if err := requireColumns(t, sortedKeys(n.Case)...); err != nil {
		return err
	}

	for _, col := range cols {
		var c cases.Caser
		mode := n.Case[col]
		if mode != "" {
			var err error
			if c, err = caser(mode); err != nil {
				return fmt.Errorf("column %q: %w", col, err)
			}
		}
		for _, r := range t.Rows {
			s, ok := r.Values[col].(string)
			if !ok {
				continue
			}
			s = norm.NFC.String(strings.TrimSpace(spaceFixer.Replace(s)))
			if mode != "" {
				s = c.String(s)
			}
			if s == "" {
				r.Values[col] = nil
				continue
			}
			r.Values[col] = s
		}
	}
	return nil
}

func caser(mode string) (cases.Caser, error) {
	switch strings.ToLower(mode) {
	case "lower":
		return cases.Lower(language.Und), nil
	case "upper":
		return cases.Upper(language.Und), nil
	case "title":
		return cases.Title(language.Und), nil
	}
	return cases.Caser{}, fmt.Errorf("unknown case %q; use lower, upper or title", mode)
}
