package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/sketchnotes/pkg/adapters/fs"
)

// ConfigFileName is the optional configuration file looked up by the CLI.
const ConfigFileName = "sketchnotes.yaml"

// ErrRootNotFound means no ancestor of the start directory holds a marker.
var ErrRootNotFound = errors.New("data root not found")

// RootMarkers identify a data directory: the fs system directory, the CLI
// config file or the sqlite database file.
var RootMarkers = []string{fs.DefaultSystemDir, ConfigFileName, DatabaseFileName}

// FindRoot returns the nearest directory at or above startDir that holds one
// of markers (RootMarkers when none are given).
func FindRoot(startDir string, markers ...string) (string, error) {
	if len(markers) == 0 {
		markers = RootMarkers
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := start; ; {
		if marked(dir, markers) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched upwards from %s", ErrRootNotFound, start)
		}
		dir = parent
	}
}

// DataDir resolves the data location: explicit wins, otherwise the root found
// from cwd, otherwise cwd itself.
func DataDir(explicit, cwd string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	root, err := FindRoot(cwd)
	if errors.Is(err, ErrRootNotFound) {
		return cwd, nil
	}
	return root, err
}

func marked(dir string, markers []string) bool {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}
