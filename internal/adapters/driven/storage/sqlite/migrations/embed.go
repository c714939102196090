// Package migrations embeds SQL migration files for the SQLite store.
package migrations

import "embed"

// FS contains the forward SQL migrations embedded at compile time.
//
//go:embed *.up.sql
var FS embed.FS
