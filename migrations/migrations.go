// Package migrations embeds the SQL schema migrations applied by
// golang-migrate when MIGRATIONS=1.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
