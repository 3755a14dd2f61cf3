// Package migrations embeds the numbered schema files applied by
// db.Migrator.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
