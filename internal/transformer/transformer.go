// Package transformer runs the configured transform chain over an extracted
// table.
package transformer

import (
	"fmt"

	"csvetl/pkg/records"
)

// Transformer is one step of a chain. Apply mutates t in place.
type Transformer interface {
	Name() string
	Apply(t *records.Table) error
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// StepError reports which step of a chain failed.
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Apply runs every step on a copy of in and returns the copy. The input is
// never modified, so applying a chain twice to the same table yields equal
// results.
func (c Chain) Apply(in *records.Table) (*records.Table, error) {
	out := in.Clone()
	for i, t := range c {
		if err := t.Apply(out); err != nil {
			return nil, &StepError{Index: i, Kind: t.Name(), Err: err}
		}
	}
	return out, nil
}

// Names lists the step kinds in order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.Name()
	}
	return out
}
