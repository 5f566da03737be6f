package db

import (
	"context"
	"sync"

	"notes-service/models"
)

// MemoryNoteStore tiene le note in memoria. Usato nei test e dal backend "memory".
type MemoryNoteStore struct {
	mu    sync.RWMutex
	notes []models.Note
}

func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{notes: []models.Note{}}
}

func (m *MemoryNoteStore) LoadAll(ctx context.Context) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := make([]models.Note, len(m.notes))
	copy(notes, m.notes)
	return notes, nil
}

func (m *MemoryNoteStore) Append(ctx context.Context, content, owner string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note := models.Note{ID: len(m.notes) + 1, Content: content, Owner: owner}
	m.notes = append(m.notes, note)
	return note, nil
}
