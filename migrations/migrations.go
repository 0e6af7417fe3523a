package migrations

import "embed"

// FS содержит SQL-миграции PostgreSQL, применяются в лексическом порядке имен.
//
//go:embed *.sql
var FS embed.FS
