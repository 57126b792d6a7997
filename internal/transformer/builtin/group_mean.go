package builtin

import (
	"fmt"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// GroupMean computes the mean of Column within each group of GroupBy and
// writes it to a new float column Target on every row of the group. Nulls
// are ignored; a group with no values, or a row with a null group key, gets
// a null mean.
type GroupMean struct {
	GroupBy string
	Column  string
	Target  string
}

// NewGroupMean reads group_by, column and target.
func NewGroupMean(o config.Options) (*GroupMean, error) {
	g := &GroupMean{
		GroupBy: o.String("group_by", ""),
		Column:  o.String("column", ""),
		Target:  o.String("target", ""),
	}
	if g.GroupBy == "" || g.Column == "" || g.Target == "" {
		return nil, fmt.Errorf("group_mean needs group_by, column and target")
	}
	return g, nil
}

func (*GroupMean) Name() string { return "group_mean" }

func (g *GroupMean) Apply(t *records.Table) error {
	if err := requireColumns(t, g.GroupBy, g.Column); err != nil {
		return err
	}
	if k := t.Kind(g.Column); k != records.KindInt && k != records.KindFloat {
		return fmt.Errorf("column %q is %s; coerce it to int or float first", g.Column, k)
	}

	type acc struct {
		sum float64
		n   int
	}
	groups := map[string]*acc{}
	for _, r := range t.Rows {
		key := r.Values[g.GroupBy]
		if key == nil {
			continue
		}
		a := groups[valueKey(key)]
		if a == nil {
			a = &acc{}
			groups[valueKey(key)] = a
		}
		switch n := r.Values[g.Column].(type) {
		case nil:
		case int64:
			a.sum += float64(n)
			a.n++
		case float64:
			a.sum += n
			a.n++
		default:
			return fmt.Errorf("column %q line %d: %v is not numeric", g.Column, r.Line, n)
		}
	}

	if err := t.AddColumn(g.Target, records.KindFloat); err != nil {
		return err
	}
	for _, r := range t.Rows {
		key := r.Values[g.GroupBy]
		if key == nil {
			continue
		}
		if a := groups[valueKey(key)]; a != nil && a.n > 0 {
			r.Values[g.Target] = a.sum / float64(a.n)
		}
	}
	return nil
}
