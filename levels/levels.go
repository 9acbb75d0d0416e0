// Package levels holds the built-in level files
package levels

import (
	"embed"
	"io/fs"
)

//go:embed *.yaml
var files embed.FS

// Default is the level loaded when no level file is configured
const Default = "switchyard.yaml"

// FS exposes the built-in levels
func FS() fs.FS {
	return files
}
