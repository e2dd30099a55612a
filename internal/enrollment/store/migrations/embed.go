package migrations

import "embed"

// FS contains the embedded PostgreSQL migrations for enrollment storage.
//
//go:embed *.sql
var FS embed.FS
