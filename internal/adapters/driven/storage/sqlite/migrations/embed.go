// Package migrations embeds the SQL migrations for the corpus store.
package migrations

import "embed"

// FS holds the versioned .up.sql and .down.sql files, embedded at
// compile time so the binary carries its own schema.
//
//go:embed *.sql
var FS embed.FS
