package db

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"notes-service/models"
)

func newCSVStore(t *testing.T) *CSVNoteStore {
	t.Helper()
	store := NewCSVNoteStore(filepath.Join(t.TempDir(), "data", "notes.csv"))
	require.NoError(t, store.Initialize())
	return store
}

func TestCSVNoteStore_EmptyStoreLoadsNothing(t *testing.T) {
	store := newCSVStore(t)

	notes, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestCSVNoteStore_MissingFileIsStorageUnavailable(t *testing.T) {
	store := NewCSVNoteStore(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := store.LoadAll(context.Background())
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)

	_, err = store.Append(context.Background(), "Hello", "alice")
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestCSVNoteStore_FirstAppendWritesHeader(t *testing.T) {
	store := newCSVStore(t)

	note, err := store.Append(context.Background(), "Hello world", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.Note{ID: 1, Content: "Hello world", Owner: "alice"}, note)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "id,content,owner\n1,Hello world,alice\n", string(data))
}

func TestCSVNoteStore_HeaderWrittenOnce(t *testing.T) {
	store := newCSVStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "first", "alice")
	require.NoError(t, err)
	second, err := store.Append(ctx, "second", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "id,content,owner\n1,first,alice\n2,second,bob\n", string(data))
}

func TestCSVNoteStore_RoundTripPreservesContent(t *testing.T) {
	store := newCSVStore(t)
	ctx := context.Background()

	contents := []string{
		"plain",
		"with, comma",
		`with "quotes"`,
		"multi\nline",
		"",
	}
	for _, content := range contents {
		_, err := store.Append(ctx, content, "alice")
		require.NoError(t, err)
	}

	notes, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, len(contents))
	for i, note := range notes {
		assert.Equal(t, i+1, note.ID)
		assert.Equal(t, contents[i], note.Content)
		assert.Equal(t, "alice", note.Owner)
	}
}

func TestCSVNoteStore_ColumnsResolvedByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.csv")
	require.NoError(t, os.WriteFile(path, []byte("owner,id,content\nalice,1,hi\n"), 0644))

	notes, err := NewCSVNoteStore(path).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Note{{ID: 1, Content: "hi", Owner: "alice"}}, notes)
}

func TestCSVNoteStore_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"id non numerico", "id,content,owner\nx,hi,alice\n"},
		{"colonna mancante", "id,content\n1,hi\n"},
		{"numero di campi errato", "id,content,owner\n1,hi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "notes.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := NewCSVNoteStore(path).LoadAll(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCSVNoteStore_HeaderOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,content,owner\n"), 0644))
	store := NewCSVNoteStore(path)

	note, err := store.Append(context.Background(), "hi", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, note.ID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,content,owner\n1,hi,bob\n", string(data))
}

func TestCSVNoteStore_ConcurrentAppendsGetUniqueIDs(t *testing.T) {
	store := newCSVStore(t)
	ctx := context.Background()

	const n = 20
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			note, err := store.Append(ctx, "note", "alice")
			assert.NoError(t, err)
			ids[i] = note.ID
		}(i)
	}
	wg.Wait()

	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}

	notes, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, n)
}
