// Package db embeds the goose SQL migrations for the summary store.
package db

import "embed"

// Migrations holds the files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"
