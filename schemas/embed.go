// Package schemas embeds the migrations of the notes database.
package schemas

import "embed"

// Migrations holds the golang-migrate files, numbered <version>_<name>.{up,down}.sql.
//
//go:embed migrations/*.sql
var Migrations embed.FS
