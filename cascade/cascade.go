// Package cascade ships the pigo facefinder cascade so the detector works without a file on disk.
package cascade

import (
	_ "embed"
)

//go:embed facefinder
var Facefinder []byte
