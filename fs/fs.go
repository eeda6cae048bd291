// Package appfs exposes files embedded in the application binary.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
