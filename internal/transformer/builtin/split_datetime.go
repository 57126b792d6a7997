package builtin

import (
	"fmt"
	"time"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// SplitDatetime derives a date column and a time-of-day column from a date
// or timestamp column. Nulls stay null in both outputs. The source column is
// kept.
type SplitDatetime struct {
	Column string
	// Date and Time name the new columns; they default to Column+"_date" and
	// Column+"_time".
	Date string
	Time string
}

// NewSplitDatetime reads column, date and time.
func NewSplitDatetime(o config.Options) (*SplitDatetime, error) {
	col := o.String("column", "")
	if col == "" {
		return nil, fmt.Errorf("split_datetime needs a column")
	}
	return &SplitDatetime{
		Column: col,
		Date:   o.String("date", col+"_date"),
		Time:   o.String("time", col+"_time"),
	}, nil
}

func (*SplitDatetime) Name() string { return "split_datetime" }

func (s *SplitDatetime) Apply(t *records.Table) error {
	if err := requireColumns(t, s.Column); err != nil {
		return err
	}
	if k := t.Kind(s.Column); k != records.KindDate && k != records.KindTimestamp {
		return fmt.Errorf("column %q is %s; coerce it to date or timestamp first", s.Column, k)
	}
	if err := t.AddColumn(s.Date, records.KindDate); err != nil {
		return err
	}
	if err := t.AddColumn(s.Time, records.KindTime); err != nil {
		return err
	}
	for _, r := range t.Rows {
		v := r.Values[s.Column]
		if v == nil {
			continue
		}
		ts, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %q line %d: %v is not a time value", s.Column, r.Line, v)
		}
		r.Values[s.Date] = records.Date(ts)
		r.Values[s.Time] = ts.Format(records.TimeLayout)
	}
	return nil
}
