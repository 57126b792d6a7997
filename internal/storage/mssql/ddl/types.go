// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import "strings"

// MapType maps a column kind onto a SQL Server column type. Unknown or empty
// kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIMEOFFSET"
	case "float", "double", "real":
		return "FLOAT"
	default:
		return "NVARCHAR(MAX)"
	}
}

// keyType narrows types SQL Server cannot index; NVARCHAR(MAX) is not
// allowed in a primary key, 450 characters is the widest that is.
func keyType(sqlType string) string {
	if sqlType == "NVARCHAR(MAX)" {
		return "NVARCHAR(450)"
	}
	return sqlType
}
