// Package writeatomic writes output files via a temp file and rename, so a
// crashed run never leaves a half-written playlist behind.
package writeatomic

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteFile atomically writes data to path, creating parent directories as
// needed.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return renameio.WriteFile(path, data, perm)
}
