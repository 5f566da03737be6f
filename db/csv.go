package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"notes-service/models"
)

var csvHeader = []string{"id", "content", "owner"}

// CSVNoteStore salva le note in un file CSV append-only con intestazione
// id,content,owner. Conteggio e scrittura sono serializzati dal mutex, quindi
// il file deve avere un solo processo scrittore.
type CSVNoteStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVNoteStore crea uno store sul file indicato
func NewCSVNoteStore(path string) *CSVNoteStore {
	return &CSVNoteStore{path: path}
}

// Initialize crea il file (vuoto) e la directory se non esistono
func (s *CSVNoteStore) Initialize() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("errore nella creazione della directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return fmt.Errorf("errore nella creazione di %s: %w", s.path, err)
	}
	return file.Close()
}

// Path restituisce il percorso del file
func (s *CSVNoteStore) Path() string {
	return s.path
}

// LoadAll legge tutte le note nell'ordine del file
func (s *CSVNoteStore) LoadAll(ctx context.Context) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadAll()
}

func (s *CSVNoteStore) loadAll() ([]models.Note, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("apertura di %s: %v: %w", s.path, err, models.ErrStorageUnavailable)
	}
	defer file.Close()

	return readNotes(file)
}

// Append aggiunge una nota con id pari al numero di note esistenti più uno.
// L'intestazione viene scritta solo se il file è vuoto.
func (s *CSVNoteStore) Append(ctx context.Context, content, owner string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadAll()
	if err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		ID:      len(notes) + 1,
		Content: content,
		Owner:   owner,
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return models.Note{}, fmt.Errorf("apertura in scrittura di %s: %v: %w", s.path, err, models.ErrStorageUnavailable)
	}

	if err := writeNote(file, note); err != nil {
		file.Close()
		return models.Note{}, err
	}

	if err := file.Close(); err != nil {
		return models.Note{}, fmt.Errorf("chiusura di %s: %w", s.path, err)
	}

	return note, nil
}

func writeNote(file *os.File, note models.Note) error {
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat di %s: %w", file.Name(), err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("scrittura intestazione: %w", err)
		}
	}
	if err := w.Write([]string{strconv.Itoa(note.ID), note.Content, note.Owner}); err != nil {
		return fmt.Errorf("scrittura nota %d: %w", note.ID, err)
	}

	w.Flush()
	return w.Error()
}

func readNotes(r io.Reader) ([]models.Note, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lettura intestazione: %w", err)
	}

	// Le colonne sono risolte per nome, come un DictReader
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("colonna %q mancante nell'intestazione", name)
		}
	}

	notes := []models.Note{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lettura riga: %w", err)
		}

		rawID := record[cols["id"]]
		id, err := strconv.Atoi(rawID)
		if err != nil {
			line, _ := reader.FieldPos(cols["id"])
			return nil, fmt.Errorf("id non valido %q alla riga %d: %w", rawID, line, err)
		}

		notes = append(notes, models.Note{
			ID:      id,
			Content: record[cols["content"]],
			Owner:   record[cols["owner"]],
		})
	}

	return notes, nil
}
