package artifacts

import (
	"os"
	"path/filepath"
	"strings"
)

// Relocate moves a resolved card file to its canonical timestamp-free path
// and removes any metadata sidecar the renderer wrote next to it. When the
// move fails the original path is returned with the error so callers can
// keep the artifact under its generated name.
func Relocate(entry Entry, finalPath string) (string, error) {
	removeSidecar(entry.Path)

	if entry.Path == finalPath {
		return finalPath, nil
	}
	if _, err := os.Stat(finalPath); err == nil {
		if err := os.Remove(finalPath); err != nil {
			return entry.Path, err
		}
	}
	if err := os.Rename(entry.Path, finalPath); err != nil {
		return entry.Path, err
	}
	return finalPath, nil
}

func removeSidecar(path string) {
	ext := filepath.Ext(path)
	if ext == "" {
		return
	}
	sidecar := strings.TrimSuffix(path, ext) + ".json"
	_ = os.Remove(sidecar)
}
