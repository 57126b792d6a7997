// Package ddl contains Postgres-specific DDL helpers.
package ddl

import "strings"

// MapType maps a column kind onto a Postgres SQL type.
//
//	"int"/"integer"/"bigint"     -> BIGINT
//	"float"/"double"/"real"      -> DOUBLE PRECISION
//	"bool"/"boolean"             -> BOOLEAN
//	"date"                       -> DATE
//	"timestamp"/"timestamptz"    -> TIMESTAMPTZ
//	everything else ("time" too) -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "timestamptz", "datetime":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
