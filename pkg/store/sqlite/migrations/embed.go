package migrations

import "embed"

// FS contains embedded SQLite migrations for the intake outbox.
//
//go:embed *.sql
var FS embed.FS
