package migrations

import "embed"

// FS contains embedded SQLite migrations for the relational backend.
//
//go:embed *.sql
var FS embed.FS
