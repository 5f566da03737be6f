package persistence

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"notes-service/models"
)

func TestBoltNoteStore_AppendAndLoadInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	store, err := NewBoltNoteStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	notes, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	first, err := store.Append(ctx, "Hello world", "alice")
	require.NoError(t, err)
	second, err := store.Append(ctx, "Ciao", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.Note{ID: 1, Content: "Hello world", Owner: "alice"}, first)
	assert.Equal(t, 2, second.ID)

	require.NoError(t, store.Close())

	// I dati sopravvivono alla riapertura
	reopened, err := NewBoltNoteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	notes, err = reopened.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Note{first, second}, notes)

	third, err := reopened.Append(ctx, "again", "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)
}

func TestBoltNoteStore_ConcurrentAppends(t *testing.T) {
	store, err := NewBoltNoteStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, "note", "alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	notes, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, n)
	for i, note := range notes {
		assert.Equal(t, i+1, note.ID)
	}
}

func TestBoltNoteStore_ClosedIsStorageUnavailable(t *testing.T) {
	store, err := NewBoltNoteStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.LoadAll(context.Background())
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)

	_, err = store.Append(context.Background(), "x", "alice")
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}
