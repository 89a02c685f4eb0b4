// Package migrations embeds the SQL schema of the item catalog, one
// directory per database driver.
package migrations

import "embed"

// FS holds sqlite/*.sql and postgres/*.sql.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Directories inside FS.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
