//go:build !cgo

package thumbs

import "fmt"

// InitVips reports libvips as unavailable in builds without cgo; callers
// fall back to the pure-Go thumbnail path.
func InitVips() error {
	return fmt.Errorf("libvips support requires cgo; built with CGO_ENABLED=0")
}

// ShutdownVips is a no-op in builds without cgo.
func ShutdownVips() {}

// IsVipsAvailable returns whether libvips is initialized and available.
func IsVipsAvailable() bool {
	return false
}

// renderWebpWithVips always fails in builds without cgo.
func renderWebpWithVips(path string, maxWidth, maxHeight, quality int) ([]byte, error) {
	return nil, fmt.Errorf("libvips not available")
}
