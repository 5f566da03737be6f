package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"notes-service/models"
)

// MySQLNoteStore salva le note in una tabella MySQL.
// Gli id vengono da AUTO_INCREMENT: in una tabella append-only coincidono
// con il numero di righe al momento dell'inserimento.
type MySQLNoteStore struct {
	db *sql.DB
}

// Crea una nuova istanza dello store MySQL
func NewMySQLNoteStore(dsn string) (*MySQLNoteStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Verifica la connessione
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Imposta i parametri di connessione
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &MySQLNoteStore{db: db}, nil
}

// Inizializza le tabelle necessarie
func (m *MySQLNoteStore) InitTables() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			content TEXT NOT NULL,
			owner VARCHAR(255) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("errore nella creazione della tabella notes: %v", err)
	}

	return nil
}

// LoadAll carica tutte le note in ordine di inserimento
func (m *MySQLNoteStore) LoadAll(ctx context.Context) ([]models.Note, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT id, content, owner FROM notes ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query note: %v: %w", err, models.ErrStorageUnavailable)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ListByOwner carica solo le note di un proprietario
func (m *MySQLNoteStore) ListByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT id, content, owner FROM notes WHERE owner = ? ORDER BY id ASC", owner)
	if err != nil {
		return nil, fmt.Errorf("query note di %s: %v: %w", owner, err, models.ErrStorageUnavailable)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Append inserisce una nuova nota
func (m *MySQLNoteStore) Append(ctx context.Context, content, owner string) (models.Note, error) {
	res, err := m.db.ExecContext(ctx, "INSERT INTO notes (content, owner) VALUES (?, ?)", content, owner)
	if err != nil {
		return models.Note{}, fmt.Errorf("inserimento nota: %v: %w", err, models.ErrStorageUnavailable)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Note{}, fmt.Errorf("recupero id della nota: %w", err)
	}

	return models.Note{ID: int(id), Content: content, Owner: owner}, nil
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.Content, &note.Owner); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// Chiude la connessione al database
func (m *MySQLNoteStore) Close() error {
	return m.db.Close()
}
