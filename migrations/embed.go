// Package migrations embeds the schema files for each SQL backend.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// SQLite returns the sqlite migrations rooted at their directory.
func SQLite() fs.FS {
	sub, _ := fs.Sub(files, "sqlite")
	return sub
}

// Postgres returns the postgres migrations rooted at their directory.
func Postgres() fs.FS {
	sub, _ := fs.Sub(files, "postgres")
	return sub
}
