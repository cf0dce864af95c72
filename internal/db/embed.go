package db

import "embed"

// EmbedMigrations holds the schema migrations compiled into the binary, so
// the server and auditctl can migrate any store file they are pointed at.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
