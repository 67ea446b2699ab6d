package store

import (
	"path/filepath"

	"github.com/nvandessel/reportsummary/internal/constants"
)

// LocalDataPath returns the path to the local .reportsummary directory
// for the given workspace root.
func LocalDataPath(root string) string {
	return filepath.Join(root, constants.DataDir)
}

// DefaultArchivePath returns the archive database path for a workspace root.
func DefaultArchivePath(root string) string {
	return filepath.Join(LocalDataPath(root), constants.ArchiveFile)
}
