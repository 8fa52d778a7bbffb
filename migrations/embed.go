// Package migrations bundles the SQL schema migrations for each supported
// backend. Stores select their dialect subtree with fs.Sub.
package migrations

import "embed"

//go:embed sqlite postgres
var FS embed.FS
