package migrations

import "embed"

// FS contains embedded SQLite migrations for datastore storage.
//
//go:embed *.sql
var FS embed.FS
