package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDataPath(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, SandboxDir)

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{"Normal Mode - Current Dir", ".", false, "."},
		{"Normal Mode - Empty", "", false, "."},
		{"Normal Mode - Specific Path", "/some/path", false, "/some/path"},
		{"Dev Mode - Empty Path", "", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Current Dir", ".", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Relative Name", "my-notes", true, filepath.Join(devBase, "my-notes")},
		{"Dev Mode - Clean Name", "../bad/path", true, filepath.Join(devBase, "path")},
		{"Dev Mode - Temp Dir Passes Through", filepath.Join(tempRoot, "my-test"), true, filepath.Join(tempRoot, "my-test")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveDataPath(tt.userPath, tt.forceTemp))
		})
	}
}

func TestIsDevRun(t *testing.T) {
	assert.True(t, IsDevRun(), "IsDevRun must be true inside go test")
}
