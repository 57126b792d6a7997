// Package config provides configuration models and helpers for ETL pipelines.
//
// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in the CLI or tests.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"csvetl/pkg/records"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "load.mode",
// "transform[1].options.types"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors joins the error-severity issues into one error, or returns nil.
func Errors(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

// TransformKinds lists the transform kinds the pipeline understands.
var TransformKinds = []string{
	"normalize",
	"require",
	"fill_null",
	"flag_missing",
	"coerce",
	"rename",
	"drop",
	"split_datetime",
	"group_mean",
	"dedupe",
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  fmt.Sprintf("job is empty; runs will be labeled %q", DefaultJob),
		})
	}
	if strings.TrimSpace(p.Source()) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source_path",
			Message:  "source_path must not be empty",
		})
	}
	if strings.TrimSpace(p.TableName) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "table_name",
			Message:  "table_name must not be empty",
		})
	}
	issues = append(issues, validateParser(p)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	issues = append(issues, validateLoad(p.TableName, p.Load)...)

	return issues
}

// validateParser validates parser configuration.
func validateParser(p Pipeline) []Issue {
	var issues []Issue

	if p.ParserKind() != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only csv is available", p.Parser.Kind),
		})
	}
	comma, commaIssue := delimiter(p.Parser.Options, "comma", ',')
	comment, commentIssue := delimiter(p.Parser.Options, "comment", 0)
	for _, is := range []*Issue{commaIssue, commentIssue} {
		if is != nil {
			issues = append(issues, *is)
		}
	}
	if commaIssue == nil && commentIssue == nil && comment != 0 && comment == comma {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comment",
			Message:  fmt.Sprintf("comment must differ from comma %q", comma),
		})
	}
	return issues
}

// delimiter reads a single-character parser option and checks it against
// the delimiter rules of encoding/csv.
func delimiter(o Options, key string, def rune) (rune, *Issue) {
	s := o.String(key, "")
	if s == "" {
		return def, nil
	}
	fail := func(msg string) (rune, *Issue) {
		return 0, &Issue{Severity: SeverityError, Path: "parser.options." + key, Message: msg}
	}
	if !utf8.ValidString(s) {
		return fail(fmt.Sprintf("%s must be valid UTF-8, got %q", key, s))
	}
	if utf8.RuneCountInString(s) > 1 {
		return fail(fmt.Sprintf("%s must be a single character, got %q", key, s))
	}
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '"', '\r', '\n', utf8.RuneError:
		return fail(fmt.Sprintf("%s must not be %q", key, r))
	}
	return r, nil
}

// validateTransforms validates the transform chain.
func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	if len(ts) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform",
			Message:  "no transforms configured; parsed records will be written as text",
		})
		return issues
	}

	known := make(map[string]struct{}, len(TransformKinds))
	for _, k := range TransformKinds {
		known[k] = struct{}{}
	}

	for i, t := range ts {
		base := fmt.Sprintf("transform[%d]", i)
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  "transform kind must not be empty",
			})
			continue
		}
		if _, ok := known[t.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
			continue
		}

		need := func(key, what string) {
			if !t.Options.Has(key) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options." + key,
					Message:  fmt.Sprintf("%s transform requires %s", t.Kind, what),
				})
			}
		}

		switch t.Kind {
		case "require":
			need("fields", "a list of fields")
			if p := t.Options.String("policy", "drop"); p != "drop" && p != "fail" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options.policy",
					Message:  fmt.Sprintf("policy must be drop or fail, got %q", p),
				})
			}
		case "fill_null":
			need("values", "a values object")
		case "flag_missing", "rename":
			need("columns", "a columns object")
		case "drop":
			need("columns", "a list of columns")
		case "coerce":
			need("types", "a types object")
			for col, typ := range t.Options.StringMap("types") {
				if _, err := records.ParseKind(typ); err != nil {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     base + ".options.types." + col,
						Message:  err.Error(),
					})
				}
			}
			if p := t.Options.String("on_error", "fail"); p != "fail" && p != "null" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options.on_error",
					Message:  fmt.Sprintf("on_error must be fail or null, got %q", p),
				})
			}
		case "split_datetime":
			need("column", "a source column")
		case "group_mean":
			need("group_by", "a group_by column")
			need("column", "a value column")
			need("target", "a target column")
		case "dedupe":
			need("keys", "a list of key columns")
		}
	}

	return issues
}

// validateLoad validates load options.
func validateLoad(table string, l LoadSpec) []Issue {
	var issues []Issue

	if l.RawTable != "" && strings.EqualFold(strings.TrimSpace(l.RawTable), strings.TrimSpace(table)) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "load.raw_table",
			Message:  "raw_table must differ from table_name",
		})
	}

	switch l.LoadMode() {
	case ModeAppend, ModeReplace:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "load.mode",
			Message:  fmt.Sprintf("mode must be %s or %s, got %q", ModeAppend, ModeReplace, l.Mode),
		})
	}
	if l.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "load.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}
