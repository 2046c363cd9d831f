// Package appfs embeds the assets shipped with the binary.
package appfs

import "embed"

// SeedFile is the path of the default seed fixture inside FS.
const SeedFile = "fixtures/seed.yaml"

//go:embed fixtures
var FS embed.FS
