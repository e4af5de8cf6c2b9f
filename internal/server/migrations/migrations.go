// Package migrations embeds the goose SQL migrations, including the
// row-level security policies that enforce per-principal isolation inside
// the storage engine itself.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
