package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile(t *testing.T) {
	t.Run("creates", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "notes.json")
		require.NoError(t, replaceFile(target, []byte("[]"), 0644))

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))
	})

	t.Run("overwrites without leftovers", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "notes.json")
		require.NoError(t, os.WriteFile(target, []byte("initial"), 0644))
		require.NoError(t, replaceFile(target, []byte(`[{"id":"1"}]`), 0600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "notes.json", entries[0].Name())

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, string(got))
	})

	t.Run("missing directory", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "missing", "notes.json")
		assert.Error(t, replaceFile(target, []byte("x"), 0644))
	})

	t.Run("target is a directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "notes.json")
		require.NoError(t, os.Mkdir(target, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0644))

		assert.Error(t, replaceFile(target, []byte("x"), 0644))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "staged file left: %s", e.Name())
		}
	})
}

func TestSweepStaged(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, TempFilePrefix+"notes.json-1")
	fresh := filepath.Join(dir, TempFilePrefix+"notes.json-2")
	data := filepath.Join(dir, "notes.json")
	for _, p := range []string{old, fresh, data} {
		require.NoError(t, os.WriteFile(p, []byte("[]"), 0644))
	}
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(data, past, past))

	n, err := sweepStaged(dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, data)
}

func TestInitialize_SweepsInterruptedWrites(t *testing.T) {
	dir := t.TempDir()
	staged := filepath.Join(dir, TempFilePrefix+"users.json-9")
	require.NoError(t, os.WriteFile(staged, []byte("[{"), 0644))
	past := time.Now().Add(-2 * staleStageAge)
	require.NoError(t, os.Chtimes(staged, past, past))

	s := NewStore(Config{Path: dir})
	require.NoError(t, s.Initialize(context.Background()))
	assert.NoFileExists(t, staged)
}

func TestKeyFor(t *testing.T) {
	s := NewStore(Config{Path: t.TempDir()})
	cases := map[string]bool{
		"notes.json":                    true,
		"loggedInUser.json":             true,
		TempFilePrefix + "123":          false,
		TempFilePrefix + "notes.json-7": false,
		"notes.md":                      false,
		".sketchnotes":                  false,
	}
	for name, want := range cases {
		_, ok := s.keyFor(name)
		assert.Equal(t, want, ok, name)
	}
}
