// Package db embeds the SQL migrations of the published content store.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
