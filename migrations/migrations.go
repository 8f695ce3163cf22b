// Package migrations embeds the SQL schema for every supported database.
package migrations

import "embed"

// FS holds the sqlite/ and postgres/ migration sets
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
