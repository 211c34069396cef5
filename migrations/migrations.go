// Package migrations embeds the schema migration files
package migrations

import "embed"

// FS holds the versioned SQL migrations applied at startup
//
//go:embed *.sql
var FS embed.FS
