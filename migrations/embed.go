// Package migrations embeds the SQL schema so the binary can bootstrap an empty database.
package migrations

import "embed"

// FS contains all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
