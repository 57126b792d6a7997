// Package all wires the built-in storage backends into the storage factory.
//
// Importing it (as a blank import) runs each backend's init, which registers
// its Repository factory and DDL bootstrapper, making these kinds available:
//
//   - "postgres" (csvetl/internal/storage/postgres)
//   - "mysql"    (csvetl/internal/storage/mysql)
//   - "mssql"    (csvetl/internal/storage/mssql)
//   - "sqlite"   (csvetl/internal/storage/sqlite)
//
// A binary that needs fewer backends can import them individually instead.
package all

import (
	_ "csvetl/internal/storage/mssql"
	_ "csvetl/internal/storage/mysql"
	_ "csvetl/internal/storage/postgres"
	_ "csvetl/internal/storage/sqlite"
)
