package persistence

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"notes-service/models"
)

var (
	notesBucket = []byte("notes")
)

// BoltNoteStore salva le note in un file bbolt. Le chiavi sono gli id in
// big-endian, quindi il cursore restituisce le note in ordine di inserimento.
type BoltNoteStore struct {
	db *bbolt.DB
}

func NewBoltNoteStore(path string) (*BoltNoteStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(notesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltNoteStore{db: db}, nil
}

// LoadAll carica tutte le note
func (s *BoltNoteStore) LoadAll(ctx context.Context) ([]models.Note, error) {
	notes := []models.Note{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(notesBucket)
		cursor := bucket.Cursor()

		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var note models.Note
			if err := decodeBinary(v, &note); err != nil {
				return fmt.Errorf("nota %d illeggibile: %w", binary.BigEndian.Uint64(k), err)
			}
			notes = append(notes, note)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lettura note: %v: %w", err, models.ErrStorageUnavailable)
	}

	return notes, nil
}

// Append salva una nuova nota. L'id viene da NextSequence dentro la stessa
// transazione di scrittura, quindi è unico anche con richieste concorrenti.
func (s *BoltNoteStore) Append(ctx context.Context, content, owner string) (models.Note, error) {
	var note models.Note

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(notesBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		note = models.Note{ID: int(seq), Content: content, Owner: owner}
		data, err := encodeToBinary(note)
		if err != nil {
			return err
		}
		return bucket.Put(itob(seq), data)
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("salvataggio nota: %v: %w", err, models.ErrStorageUnavailable)
	}

	return note, nil
}

func (s *BoltNoteStore) Close() error {
	return s.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func encodeToBinary(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(data)
	return buf.Bytes(), err
}

func decodeBinary(data []byte, target interface{}) error {
	buf := bytes.NewBuffer(data)
	return gob.NewDecoder(buf).Decode(target)
}
