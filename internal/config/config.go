// Package config defines the configuration model of a pipeline run and loads
// it from the two JSON files the tool is driven by:
//
//   - the database file (connection parameters), read with viper so every key
//     can be overridden from the environment (CSVETL_DB_*);
//   - the pipeline file (source, target table, parser options, transform
//     chain, load options), decoded with encoding/json so column names used
//     as option keys keep their case.
//
// Example pipeline (trimmed):
//
//	{
//	  "job": "listings",
//	  "source_path": "data/AB_NYC_2019.csv",
//	  "table_name": "public.listings",
//	  "parser": { "options": { "trim_space": true } },
//	  "transform": [
//	    { "kind": "coerce", "options": { "types": { "price": "int" } } },
//	    { "kind": "require", "options": { "fields": ["price"] } }
//	  ],
//	  "load": { "mode": "append", "batch_size": 1000, "primary_key": ["id"] }
//	}
package config

import "encoding/json"

// DefaultJob names runs whose pipeline file has no job.
const DefaultJob = "csvetl"

// DefaultBatchSize is the number of rows per bulk insert call.
const DefaultBatchSize = 1000

// Load modes.
const (
	ModeAppend  = "append"
	ModeReplace = "replace"
)

// Config is everything a run needs. It is built once by Load and passed
// explicitly to each stage.
type Config struct {
	Database Database
	Pipeline Pipeline

	// DatabasePath and PipelinePath record where the configuration came from.
	DatabasePath string
	PipelinePath string
}

// Pipeline is the decoded pipeline file.
type Pipeline struct {
	// Job labels logs and metrics.
	Job string `json:"job"`

	// SourcePath is the CSV file to extract.
	SourcePath string `json:"source_path"`

	// LegacySourcePath accepts the key used by older config files.
	LegacySourcePath string `json:"csv_file_path,omitempty"`

	// TableName is the target table, optionally schema qualified.
	TableName string `json:"table_name"`

	Parser    Parser      `json:"parser"`
	Transform []Transform `json:"transform"`
	Load      LoadSpec    `json:"load"`
}

// Parser configures CSV parsing. Recognized options:
//
//	comma (string), trim_space (bool), null_values ([]string),
//	header_map (object), lazy_quotes (bool)
type Parser struct {
	// Kind is "csv" (the default when empty).
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// Transform is one step of the transform chain. The shape of Options is
// defined by the step kind.
type Transform struct {
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// LoadSpec configures how the cleaned table is written.
type LoadSpec struct {
	// Mode is "append" (default) or "replace". Replace drops the target table
	// before recreating it.
	Mode string `json:"mode"`

	// BatchSize is the number of rows per bulk insert call inside the single
	// load transaction. Zero selects DefaultBatchSize.
	BatchSize int `json:"batch_size"`

	// PrimaryKey names the columns of the primary key used when the table is
	// created.
	PrimaryKey []string `json:"primary_key"`

	// RawTable, when set, also stages the extracted rows untransformed (all
	// text) into this table, in the same transaction and with the same mode.
	RawTable string `json:"raw_table,omitempty"`
}

// JobName returns the configured job or DefaultJob.
func (p Pipeline) JobName() string {
	if p.Job == "" {
		return DefaultJob
	}
	return p.Job
}

// Source returns the CSV path, honoring the legacy key.
func (p Pipeline) Source() string {
	if p.SourcePath != "" {
		return p.SourcePath
	}
	return p.LegacySourcePath
}

// ParserKind returns the parser kind, "csv" when unset.
func (p Pipeline) ParserKind() string {
	if p.Parser.Kind == "" {
		return "csv"
	}
	return p.Parser.Kind
}

// LoadMode returns the load mode, ModeAppend when unset.
func (l LoadSpec) LoadMode() string {
	if l.Mode == "" {
		return ModeAppend
	}
	return l.Mode
}

// Batch returns the effective batch size.
func (l LoadSpec) Batch() int {
	if l.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return l.BatchSize
}

// Options is a small helper to fetch typed values from the free-form JSON
// option bags of parsers and transforms. It performs only minimal coercion
// and returns the provided default when a key is absent or of another type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. encoding/json decodes numbers as
// float64, which is accepted and truncated.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Float returns the float64 value for key or def.
func (o Options) Float(key string, def float64) float64 {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if the key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns the string-valued entries of an object value. It never
// returns nil.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		case map[string]string:
			for k, s := range m {
				res[k] = s
			}
		}
	}
	return res
}

// Map returns an object value with its raw values, or nil.
func (o Options) Map(key string) map[string]any {
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// StringSlice returns the string elements of an array value, or nil when the
// key is missing or not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Any returns the raw value for key.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON decodes a missing or null object into an empty, non-nil
// Options.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
