package transformer

import (
	"fmt"
	"slices"

	"csvetl/internal/config"
	"csvetl/internal/transformer/builtin"
)

// Factory builds a transformer from its options.
type Factory func(o config.Options) (Transformer, error)

func wrap[T Transformer](fn func(config.Options) (T, error)) Factory {
	return func(o config.Options) (Transformer, error) { return fn(o) }
}

var factories = map[string]Factory{
	"normalize":      wrap(builtin.NewNormalize),
	"require":        wrap(builtin.NewRequire),
	"fill_null":      wrap(builtin.NewFillNull),
	"flag_missing":   wrap(builtin.NewFlagMissing),
	"coerce":         wrap(builtin.NewCoerce),
	"rename":         wrap(builtin.NewRename),
	"drop":           wrap(builtin.NewDrop),
	"split_datetime": wrap(builtin.NewSplitDatetime),
	"group_mean":     wrap(builtin.NewGroupMean),
	"dedupe":         wrap(builtin.NewDedupe),
}

// Build turns the pipeline's transform list into a Chain. It fails on an
// unknown kind or on options the step cannot use.
func Build(steps []config.Transform) (Chain, error) {
	chain := make(Chain, 0, len(steps))
	for i, s := range steps {
		f, ok := factories[s.Kind]
		if !ok {
			return nil, fmt.Errorf("transform[%d]: unknown kind %q", i, s.Kind)
		}
		t, err := f(s.Options)
		if err != nil {
			return nil, fmt.Errorf("transform[%d] (%s): %w", i, s.Kind, err)
		}
		chain = append(chain, t)
	}
	return chain, nil
}

// Required returns the columns that require steps leave without nulls, in
// first-seen order, following later renames and drops.
func Required(c Chain) []string {
	var out []string
	for _, t := range c {
		switch s := t.(type) {
		case *builtin.Require:
			for _, f := range s.Fields {
				if !slices.Contains(out, f) {
					out = append(out, f)
				}
			}
		case *builtin.Rename:
			for i, f := range out {
				if to, ok := s.Columns[f]; ok {
					out[i] = to
				}
			}
		case *builtin.Drop:
			out = slices.DeleteFunc(out, func(f string) bool { return slices.Contains(s.Columns, f) })
		}
	}
	return out
}
