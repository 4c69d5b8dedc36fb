// Package migrations embeds the goose SQL migrations for the scene_runs
// table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
