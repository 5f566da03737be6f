package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
	"notes-service/models"
)

// SQLiteUserStore verifica le credenziali contro una tabella users in SQLite.
// Le password sono salvate come hash bcrypt.
type SQLiteUserStore struct {
	db   *sql.DB
	cost int
}

// NewSQLiteUserStore apre (o crea) il database utenti
func NewSQLiteUserStore(path string) (*SQLiteUserStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("errore nella creazione della tabella users: %v", err)
	}

	return &SQLiteUserStore{db: db, cost: bcrypt.DefaultCost}, nil
}

// AddUser crea l'utente o ne aggiorna la password
func (s *SQLiteUserStore) AddUser(ctx context.Context, username, password string) error {
	if username == "" {
		return errors.New("username vuoto")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash della password di %s: %w", username, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash
	`, username, string(hash))
	return err
}

// Authenticate restituisce l'utente se le credenziali sono valide, nil altrimenti.
// L'errore è riservato ai problemi del database.
func (s *SQLiteUserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" {
		return nil, nil
	}

	var (
		user models.User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password_hash, created_at FROM users WHERE username = ?", username,
	).Scan(&user.Username, &hash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lettura utente %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, nil
	}

	return &user, nil
}

func (s *SQLiteUserStore) Close() error {
	return s.db.Close()
}
