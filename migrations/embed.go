// Package migrations embeds the versioned SQL applied by the migrate tool and the integration suite.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
