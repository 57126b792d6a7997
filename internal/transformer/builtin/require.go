package builtin

import (
	"fmt"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// Require policies.
const (
	PolicyDrop = "drop"
	PolicyFail = "fail"
)

// Require handles rows missing a value (null or empty) in any of Fields.
// With PolicyDrop such rows are removed; with PolicyFail the first one is
// an error.
type Require struct {
	Fields []string
	Policy string
}

// NewRequire reads fields ([]string) and policy (drop or fail).
func NewRequire(o config.Options) (*Require, error) {
	r := &Require{Fields: o.StringSlice("fields"), Policy: o.String("policy", PolicyDrop)}
	if len(r.Fields) == 0 {
		return nil, fmt.Errorf("require needs at least one field")
	}
	if r.Policy != PolicyDrop && r.Policy != PolicyFail {
		return nil, fmt.Errorf("unknown policy %q", r.Policy)
	}
	return r, nil
}

func (*Require) Name() string { return "require" }

func (r *Require) Apply(t *records.Table) error {
	if err := requireColumns(t, r.Fields...); err != nil {
		return err
	}
	missing := func(row records.Row) (string, bool) {
		for _, f := range r.Fields {
			if records.IsNull(row.Values[f]) {
				return f, true
			}
		}
		return "", false
	}

	if r.Policy == PolicyFail {
		for _, row := range t.Rows {
			if f, ok := missing(row); ok {
				return fmt.Errorf("line %d: required column %q is empty", row.Line, f)
			}
		}
		return nil
	}
	t.Filter(func(row records.Row) bool {
		_, ok := missing(row)
		return !ok
	})
	return nil
}
