// Package ddl contains SQLite-specific DDL helpers: the kind to column type
// mapping and the CREATE/DROP statements the loader runs.
package ddl

import "strings"

// MapType maps a column kind (or a common SQL spelling of one) onto a SQLite
// column type. SQLite types are affinities, so dates, timestamps and
// times-of-day are stored as ISO-8601 TEXT and booleans as INTEGER 0/1.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	case "date", "time", "timestamp", "datetime", "timestamptz":
		return "TEXT"
	default:
		return "TEXT"
	}
}
