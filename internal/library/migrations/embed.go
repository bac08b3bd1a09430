// Package migrations embeds the saved-message schema.
package migrations

import "embed"

// FS holds the numbered SQL migrations, applied in name order.
//
//go:embed *.sql
var FS embed.FS
