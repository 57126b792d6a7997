package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validPipeline() Pipeline {
	return Pipeline{
		Job:        "listings",
		SourcePath: "input.csv",
		TableName:  "public.listings",
		Transform: []Transform{
			{Kind: "coerce", Options: Options{"types": map[string]any{"price": "int"}}},
			{Kind: "require", Options: Options{"fields": []any{"price"}}},
		},
	}
}

func TestValidatePipeline_ValidMinimal(t *testing.T) {
	t.Parallel()

	issues := ValidatePipeline(validPipeline())
	assert.Empty(t, issues)
	assert.NoError(t, Errors(issues))
}

func TestValidatePipeline_Issues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Pipeline)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"missing job", func(p *Pipeline) { p.Job = "" }, SeverityWarning, "job", "job is empty"},
		{"missing source", func(p *Pipeline) { p.SourcePath = "" }, SeverityError, "source_path", "must not be empty"},
		{"missing table", func(p *Pipeline) { p.TableName = " " }, SeverityError, "table_name", "must not be empty"},
		{"xml parser", func(p *Pipeline) { p.Parser.Kind = "xml" }, SeverityError, "parser.kind", "only csv"},
		{"wide comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": ";;"} }, SeverityError, "parser.options.comma", "single character"},
		{"quote comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": `"`} }, SeverityError, "parser.options.comma", "must not be"},
		{"newline comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": "\n"} }, SeverityError, "parser.options.comma", "must not be"},
		{"carriage return comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": "\r"} }, SeverityError, "parser.options.comma", "must not be"},
		{"replacement char comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": "\uFFFD"} }, SeverityError, "parser.options.comma", "must not be"},
		{"invalid utf8 comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": "\xff"} }, SeverityError, "parser.options.comma", "valid UTF-8"},
		{"comment equals comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": ";", "comment": ";"} }, SeverityError, "parser.options.comment", "must differ from comma"},
		{"comment equals default comma", func(p *Pipeline) { p.Parser.Options = Options{"comment": ","} }, SeverityError, "parser.options.comment", "must differ from comma"},
		{"newline comment", func(p *Pipeline) { p.Parser.Options = Options{"comment": "\n"} }, SeverityError, "parser.options.comment", "must not be"},
		{"no transforms", func(p *Pipeline) { p.Transform = nil }, SeverityWarning, "transform", "no transforms"},
		{"empty kind", func(p *Pipeline) { p.Transform[0].Kind = "" }, SeverityError, "transform[0].kind", "must not be empty"},
		{"unknown kind", func(p *Pipeline) { p.Transform[0].Kind = "pivot" }, SeverityError, "transform[0].kind", `unknown transform kind "pivot"`},
		{"bad coerce type", func(p *Pipeline) {
			p.Transform[0].Options = Options{"types": map[string]any{"price": "money"}}
		}, SeverityError, "transform[0].options.types.price", `unknown kind "money"`},
		{"bad on_error", func(p *Pipeline) {
			p.Transform[0].Options["on_error"] = "skip"
		}, SeverityError, "transform[0].options.on_error", "fail or null"},
		{"require without fields", func(p *Pipeline) { p.Transform[1].Options = Options{} }, SeverityError, "transform[1].options.fields", "requires a list of fields"},
		{"require bad policy", func(p *Pipeline) { p.Transform[1].Options["policy"] = "ignore" }, SeverityError, "transform[1].options.policy", "drop or fail"},
		{"group_mean incomplete", func(p *Pipeline) {
			p.Transform = append(p.Transform, Transform{Kind: "group_mean", Options: Options{"group_by": "n", "column": "price"}})
		}, SeverityError, "transform[2].options.target", "requires a target column"},
		{"bad mode", func(p *Pipeline) { p.Load.Mode = "upsert" }, SeverityError, "load.mode", `got "upsert"`},
		{"negative batch", func(p *Pipeline) { p.Load.BatchSize = -1 }, SeverityError, "load.batch_size", "must not be negative"},
		{"raw table is the target", func(p *Pipeline) { p.Load.RawTable = p.TableName }, SeverityError, "load.raw_table", "must differ from table_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			tt.mutate(&p)
			issues := ValidatePipeline(p)
			assert.True(t, hasIssue(t, issues, tt.sev, tt.path, tt.msg), "issues: %+v", issues)
			if tt.sev == SeverityError {
				assert.Error(t, Errors(issues))
			}
		})
	}
}

func TestValidateDatabase(t *testing.T) {
	t.Parallel()

	ok := Database{Driver: "postgres", Host: "localhost", User: "etl", Password: "x", Database: "listings"}
	assert.Empty(t, ValidateDatabase(ok))

	lite := Database{Driver: "sqlite", Database: "etl.db"}
	assert.Empty(t, ValidateDatabase(lite))

	issues := ValidateDatabase(Database{Driver: "oracle", Port: 70000})
	assert.True(t, hasIssue(t, issues, SeverityError, "driver", `unsupported driver "oracle"`))
	assert.True(t, hasIssue(t, issues, SeverityError, "database", "must not be empty"))
	assert.True(t, hasIssue(t, issues, SeverityError, "port", "out of range"))

	issues = ValidateDatabase(Database{Driver: "postgres", Database: "d"})
	assert.True(t, hasIssue(t, issues, SeverityError, "host", "must not be empty"))
	assert.True(t, hasIssue(t, issues, SeverityError, "user", "must not be empty"))
	assert.True(t, hasIssue(t, issues, SeverityWarning, "password", "CSVETL_DB_PASSWORD"))
}

func TestDatabase_StringHidesPassword(t *testing.T) {
	t.Parallel()

	d := Database{Driver: "postgres", Host: "db", User: "etl", Password: "secret", Database: "listings"}
	assert.Equal(t, "postgres://etl@db:5432/listings", d.String())
	assert.NotContains(t, d.String(), "secret")

	d.Port = 6543
	assert.Equal(t, "db:6543", d.Addr())

	assert.Equal(t, "sqlite:etl.db", Database{Driver: "sqlite", Database: "etl.db"}.String())
}
