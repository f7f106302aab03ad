package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// SandboxDir is the directory under the system temp dir used by dev runs.
const SandboxDir = "sketchnotes-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// Both build their binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveDataPath determines the path actually used for the data.
// With forceTemp it re-roots the path under the sandbox, unless it already lives
// inside the system temp directory (e.g. t.TempDir()).
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	cleanUserPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanUserPath) {
		rel, err := filepath.Rel(os.TempDir(), cleanUserPath)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return cleanUserPath
		}
	}

	subName := filepath.Base(cleanUserPath)
	if userPath == "" || subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}
	return filepath.Join(os.TempDir(), SandboxDir, subName)
}
