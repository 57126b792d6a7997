package builtin

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"csvetl/internal/bitmap"
	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// Dedupe policies.
const (
	KeepFirst    = "keep-first"
	KeepLast     = "keep-last"
	MostComplete = "most-complete"
)

// Dedupe collapses rows sharing the same key and keeps one winner per key:
//
//   - "keep-first"   : the earliest row
//   - "keep-last"    : the latest row (default)
//   - "most-complete": the row with the most non-null values; ties go to the
//     later row
//
// Winners stay in source order. Keys are hashed with 128-bit XXH3 over the
// key values (null is "\x00") so large tables do not hold key strings.
// Running dedupe before the load keeps primary key violations out of the
// transaction; the table constraint still applies.
type Dedupe struct {
	Keys   []string
	Policy string
}

// NewDedupe reads keys ([]string) and policy.
func NewDedupe(o config.Options) (*Dedupe, error) {
	d := &Dedupe{
		Keys:   o.StringSlice("keys"),
		Policy: strings.ToLower(strings.TrimSpace(o.String("policy", KeepLast))),
	}
	if len(d.Keys) == 0 {
		return nil, fmt.Errorf("dedupe needs at least one key")
	}
	switch d.Policy {
	case KeepFirst, KeepLast, MostComplete:
	default:
		return nil, fmt.Errorf("unknown policy %q", d.Policy)
	}
	return d, nil
}

func (*Dedupe) Name() string { return "dedupe" }

func (d *Dedupe) Apply(t *records.Table) error {
	if err := requireColumns(t, d.Keys...); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		return nil
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[xxh3.Uint128]slot, len(t.Rows))
	var buf []byte

	for i, r := range t.Rows {
		buf = buf[:0]
		for _, k := range d.Keys {
			v := r.Values[k]
			if v == nil {
				buf = append(buf, 0)
			} else {
				buf = append(buf, valueKey(v)...)
			}
			buf = append(buf, 0x1f)
		}
		key := xxh3.Hash128(buf)

		prev, seen := winners[key]
		switch d.Policy {
		case KeepFirst:
			if !seen {
				winners[key] = slot{index: i}
			}
		case MostComplete:
			s := slot{index: i, score: completeness(r)}
			if !seen || s.score >= prev.score {
				winners[key] = s
			}
		default:
			winners[key] = slot{index: i}
		}
	}

	keep := bitmap.New(len(t.Rows))
	for _, s := range winners {
		keep.Add(s.index)
	}
	rows := make([]records.Row, 0, keep.Count())
	for i, r := range t.Rows {
		if keep.Has(i) {
			rows = append(rows, r)
		}
	}
	t.Rows = rows
	return nil
}

// completeness counts the non-null values of a row.
func completeness(r records.Row) int {
	n := 0
	for _, v := range r.Values {
		if !records.IsNull(v) {
			n++
		}
	}
	return n
}
