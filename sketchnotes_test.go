package sketchnotes_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchnotes"
	"github.com/aretw0/sketchnotes/pkg/core"
)

// TestReadOnlyMode ensures read-only mode blocks every write but still reads.
func TestReadOnlyMode(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writer, err := sketchnotes.New(dir)
	require.NoError(t, err)
	_, err = writer.Notes.Create(ctx, core.NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	reader, err := sketchnotes.New(dir, sketchnotes.WithReadOnly(true))
	require.NoError(t, err)

	notes, err := reader.Notes.Load(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	_, err = reader.Notes.Create(ctx, core.NoteInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, core.ErrReadOnly)
	_, err = reader.Notes.ToggleDone(ctx, notes[0].ID)
	assert.ErrorIs(t, err, core.ErrReadOnly)
	_, err = reader.Session.Logout(ctx)
	assert.ErrorIs(t, err, core.ErrReadOnly)

	_, err = sketchnotes.New(filepath.Join(dir, "missing"), sketchnotes.WithReadOnly(true))
	assert.Error(t, err)
}

func TestAdapters_SameBehaviour(t *testing.T) {
	for _, adapter := range []string{sketchnotes.AdapterFS, sketchnotes.AdapterSQLite, sketchnotes.AdapterMemory} {
		t.Run(adapter, func(t *testing.T) {
			ctx := context.Background()
			app, err := sketchnotes.New(t.TempDir(), sketchnotes.WithAdapter(adapter))
			require.NoError(t, err)
			defer app.Close()

			a, err := app.Notes.Create(ctx, core.NoteInput{Title: "a", Description: "a"})
			require.NoError(t, err)
			b, err := app.Notes.Create(ctx, core.NoteInput{Title: "b", Description: "b"})
			require.NoError(t, err)

			notes, err := app.Notes.Load(ctx)
			require.NoError(t, err)
			require.Len(t, notes, 2)
			assert.Equal(t, b.ID, notes[0].ID)
			assert.Equal(t, a.ID, notes[1].ID)
			assert.Equal(t, adapter, app.State()["adapter"])
		})
	}
}

// TestConcurrency_TwoWriters runs two apps over one data directory, the way a
// CLI invocation and a running server share it. No create may be lost.
func TestConcurrency_TwoWriters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	ctx := context.Background()
	dir := t.TempDir()

	first, err := sketchnotes.New(dir)
	require.NoError(t, err)
	second, err := sketchnotes.New(dir)
	require.NoError(t, err)

	const perWriter = 25
	var wg sync.WaitGroup
	for w, app := range []*sketchnotes.App{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				title := fmt.Sprintf("writer-%d-%d", w, i)
				_, err := app.Notes.Create(ctx, core.NoteInput{Title: title, Description: "stress"})
				assert.NoError(t, err)
				time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
			}
		}()
	}

	// A noisy neighbour writing unrelated files into the directory.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				_ = os.WriteFile(filepath.Join(dir, fmt.Sprintf("noise-%d.txt", rand.Intn(5))), []byte("noise"), 0644)
				time.Sleep(time.Millisecond)
			}
		}
	}()

	wg.Wait()
	close(stop)

	notes, err := first.Notes.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 2*perWriter)
}
