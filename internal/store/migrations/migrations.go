// Package migrations embeds the SQL migrations of the contacts database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
