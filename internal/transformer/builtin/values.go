package builtin

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"csvetl/pkg/records"
)

// Default layouts used when coerce has no layout for a column.
const (
	DefaultDateLayout = "2006-01-02"
)

// timestampLayouts are tried in order for KindTimestamp without a layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DefaultDateLayout,
}

// default truthy/falsy sets (lowercased). Includes Czech "ano"/"ne".
var (
	defaultTruthy = []string{"1", "t", "true", "yes", "y", "ano"}
	defaultFalsy  = []string{"0", "f", "false", "no", "n", "ne"}
)

// boolVocab maps lowercased words to bool values.
type boolVocab map[string]bool

func newBoolVocab(truthy, falsy []string) boolVocab {
	if len(truthy) == 0 {
		truthy = defaultTruthy
	}
	if len(falsy) == 0 {
		falsy = defaultFalsy
	}
	v := make(boolVocab, len(truthy)+len(falsy))
	for _, s := range truthy {
		v[strings.ToLower(s)] = true
	}
	for _, s := range falsy {
		v[strings.ToLower(s)] = false
	}
	return v
}

// converter casts values to a Kind.
type converter struct {
	layout string // date or timestamp layout; empty selects the defaults
	bools  boolVocab
}

// convert casts v to kind k. Nil stays nil. Strings are parsed; values that
// are already typed are widened or formatted where that is lossless.
func (c converter) convert(k records.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return c.parse(k, strings.TrimSpace(s))
	}
	switch k {
	case records.KindString:
		return valueKey(v), nil
	case records.KindInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			if n == math.Trunc(n) && !math.IsInf(n, 0) {
				return int64(n), nil
			}
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case records.KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	case records.KindBool:
		switch n := v.(type) {
		case bool:
			return n, nil
		case int64:
			return n != 0, nil
		case float64:
			return n != 0, nil
		}
	case records.KindDate:
		if t, ok := v.(time.Time); ok {
			return records.Date(t), nil
		}
	case records.KindTimestamp:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case records.KindTime:
		if t, ok := v.(time.Time); ok {
			return t.Format(records.TimeLayout), nil
		}
	}
	return nil, fmt.Errorf("%v (%T) cannot be converted to %s", v, v, k)
}

func (c converter) parse(k records.Kind, s string) (any, error) {
	switch k {
	case records.KindString:
		return s, nil
	case records.KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// "3.0" style integers are common in exports.
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
				return int64(f), nil
			}
			return nil, fmt.Errorf("%q is not an int", s)
		}
		return n, nil
	case records.KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%q is not a float", s)
		}
		return f, nil
	case records.KindBool:
		b, ok := c.bools[strings.ToLower(s)]
		if !ok {
			return nil, fmt.Errorf("%q is not a bool", s)
		}
		return b, nil
	case records.KindDate:
		layout := c.layout
		if layout == "" {
			layout = DefaultDateLayout
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date in layout %q", s, layout)
		}
		return records.Date(t), nil
	case records.KindTime:
		layout := c.layout
		if layout == "" {
			layout = records.TimeLayout
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a time in layout %q", s, layout)
		}
		return t.Format(records.TimeLayout), nil
	case records.KindTimestamp:
		if c.layout != "" {
			t, err := time.Parse(c.layout, s)
			if err != nil {
				return nil, fmt.Errorf("%q is not a timestamp in layout %q", s, c.layout)
			}
			return t, nil
		}
		for _, l := range timestampLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%q is not a timestamp", s)
	}
	return nil, fmt.Errorf("unknown kind %q", k)
}

// valueKey renders a value as a stable string for grouping and hashing.
func valueKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

// requireColumns returns an error naming the first column absent from t.
func requireColumns(t *records.Table, cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return fmt.Errorf("column %q not found", c)
		}
	}
	return nil
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
