// Package migrations embeds the control-plane's PostgreSQL schema
// migrations for golang-migrate's iofs source driver, grounded on the
// teacher's pkg/store/metadata/postgres/migrations embedding pattern.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
