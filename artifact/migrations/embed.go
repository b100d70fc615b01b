// SPDX-License-Identifier: MIT

// Package migrations holds the embedded schema of the sheets database.
package migrations

import "embed"

// FS contains the embedded SQLite migrations.
//
//go:embed *.sql
var FS embed.FS
