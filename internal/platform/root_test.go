package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchnotes/pkg/adapters/fs"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   data/ (.sketchnotes)
	//     subdir/nested/
	//   conf/ (sketchnotes.yaml)
	//   db/ (sketchnotes.db)
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	nestedDir := filepath.Join(dataDir, "subdir", "nested")
	confDir := filepath.Join(base, "conf")
	dbDir := filepath.Join(base, "db")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(confDir, 0755))
	require.NoError(t, os.MkdirAll(dbDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dataDir, fs.DefaultSystemDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, ConfigFileName), []byte("adapter: fs\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dbDir, DatabaseFileName), nil, 0644))

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{name: "at root", start: dataDir, want: dataDir},
		{name: "nested", start: nestedDir, want: dataDir},
		{name: "config file", start: confDir, want: confDir},
		{name: "database file", start: dbDir, want: dbDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}
}

func TestFindRoot_CustomMarkers(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	marker := "marker-" + filepath.Base(base)
	require.NoError(t, os.WriteFile(filepath.Join(base, marker), nil, 0644))

	got, err := FindRoot(nested, marker)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(base), filepath.Clean(got))

	_, err = FindRoot(nested, "missing-"+filepath.Base(base))
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestDataDir(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "x", "y")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(base, fs.DefaultSystemDir), 0755))

	got, err := DataDir("/explicit", nested)
	require.NoError(t, err)
	assert.Equal(t, "/explicit", got)

	got, err = DataDir("", nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(base), filepath.Clean(got))
}
