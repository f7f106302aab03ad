package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchnotes/pkg/core"
)

func TestNotes_LoadEmpty(t *testing.T) {
	f := setup(t)
	notes, err := f.notes.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNotes_CreatePrepends(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	before := seedNotes(t, f, "first", "second")

	created, err := f.notes.Create(ctx, core.NoteInput{Title: "Sketch A", Description: "first sketch"})
	require.NoError(t, err)

	notes, err := f.notes.Load(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, created, notes[0])
	assert.Equal(t, "Sketch A", notes[0].Title)
	assert.Equal(t, "first sketch", notes[0].Description)
	assert.False(t, notes[0].Done)
	assert.NotEmpty(t, notes[0].ID)
	for _, n := range before {
		assert.NotEqual(t, n.ID, created.ID)
	}
	assert.Equal(t, "second", notes[1].Title)
}

func TestNotes_CreateRegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ids := []string{"a", "a", "b"}
	f.notes.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	_, err := f.notes.Create(ctx, core.NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	second, err := f.notes.Create(ctx, core.NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "b", second.ID)
}

func TestNotes_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	cases := map[string]core.NoteInput{
		"missing title":       {Description: "d"},
		"missing description": {Title: "t"},
		"whitespace title":    {Title: "   ", Description: "d"},
		"relative image":      {Title: "t", Description: "d", Image: "/img.png"},
		"ftp image":           {Title: "t", Description: "d", Image: "ftp://example.com/a.png"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.notes.Create(ctx, in)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}

	notes, err := f.notes.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	n, err := f.notes.Create(ctx, core.NoteInput{Title: "t", Description: "d", Image: " https://example.com/a.png "})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", n.Image)
}

func TestNotes_ToggleDoneTwice(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id := seedNotes(t, f, "one")[0].ID

	n, err := f.notes.ToggleDone(ctx, id)
	require.NoError(t, err)
	assert.True(t, n.Done)

	_, err = f.notes.Load(ctx)
	require.NoError(t, err)

	n, err = f.notes.ToggleDone(ctx, id)
	require.NoError(t, err)
	assert.False(t, n.Done)

	got, err := f.notes.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Done)
}

func TestNotes_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	orig := seedNotes(t, f, "one")[0]

	_, err := f.notes.Update(ctx, orig.ID, core.NotePatch{Title: ptr("renamed")})
	require.NoError(t, err)

	got, err := f.notes.Get(ctx, orig.ID)
	require.NoError(t, err)
	want := orig
	want.Title = "renamed"
	assert.Equal(t, want, got)

	_, err = f.notes.Update(ctx, orig.ID, core.NotePatch{Description: ptr(" ")})
	assert.ErrorIs(t, err, core.ErrValidation)

	got, err = f.notes.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNotes_MissingID(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seedNotes(t, f, "one")

	_, err := f.notes.Update(ctx, "missing", core.NotePatch{Title: ptr("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = f.notes.ToggleDone(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = f.notes.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	err = f.notes.Remove(ctx, "missing", Always)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNotes_Remove(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	notes := seedNotes(t, f, "one", "two", "three")
	target := notes[1].ID

	var asked string
	decline := ConfirmFunc(func(_ context.Context, prompt string) bool {
		asked = prompt
		return false
	})
	err := f.notes.Remove(ctx, target, decline)
	assert.ErrorIs(t, err, core.ErrDeletionNotConfirmed)
	assert.Equal(t, DeletePrompt, asked)

	after, err := f.notes.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, notes, after)

	assert.ErrorIs(t, f.notes.Remove(ctx, target, nil), core.ErrDeletionNotConfirmed)

	require.NoError(t, f.notes.Remove(ctx, target, Always))
	after, err = f.notes.Load(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	for _, n := range after {
		assert.NotEqual(t, target, n.ID)
	}
}

func TestNotes_CorruptData(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		"not json":      `{broken`,
		"empty id":      `[{"id":"","title":"t","description":"d","done":false}]`,
		"duplicate ids": `[{"id":"a","title":"t","description":"d"},{"id":"a","title":"t","description":"d"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			require.NoError(t, f.store.Set(ctx, core.KeyNotes, []byte(raw)))

			_, err := f.notes.Load(ctx)
			assert.ErrorIs(t, err, core.ErrCorruptData)
			_, err = f.notes.Create(ctx, core.NoteInput{Title: "t", Description: "d"})
			assert.ErrorIs(t, err, core.ErrCorruptData)
		})
	}
}

func TestNotes_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.notes.Create(ctx, core.NoteInput{Title: "t", Description: "d"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	notes, err := f.notes.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 20)
}

func TestNotes_Watch(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := f.notes.Watch(ctx)
	require.NoError(t, err)

	seedNotes(t, f, "one")
	select {
	case e := <-events:
		assert.Equal(t, core.KeyNotes, e.Key)
		assert.Equal(t, core.EventCreate, e.Type)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}
