// Package migrations embeds the versioned SQL schema of the accounts store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
