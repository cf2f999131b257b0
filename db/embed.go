// Package db carries the schema migrations for every supported store driver.
package db

import "embed"

// Migrations holds one directory per driver: migrations/postgres and migrations/sqlite.
//
//go:embed migrations
var Migrations embed.FS
