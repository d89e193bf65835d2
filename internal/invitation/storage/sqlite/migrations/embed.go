package migrations

import "embed"

// FS contains embedded SQLite migrations for invitation storage.
//
//go:embed *.sql
var FS embed.FS
