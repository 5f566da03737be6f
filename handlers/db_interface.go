package handlers

import (
	"context"

	"notes-service/models"
)

// NoteStore è il contratto di salvataggio delle note. Append assegna l'id
// e restituisce la nota effettivamente scritta.
type NoteStore interface {
	LoadAll(ctx context.Context) ([]models.Note, error)
	Append(ctx context.Context, content, owner string) (models.Note, error)
}

// OwnerLister è implementato dagli store che sanno filtrare per proprietario
type OwnerLister interface {
	ListByOwner(ctx context.Context, owner string) ([]models.Note, error)
}

// UserVerifier verifica username e password. Restituisce nil se le
// credenziali non sono valide; l'errore indica un guasto del verificatore.
type UserVerifier interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// SpellChecker restituisce le annotazioni di errore per un testo
type SpellChecker interface {
	Check(ctx context.Context, text string) ([]models.SpellError, error)
}

// ContentPolicy è un controllo aggiuntivo e opzionale sul contenuto
type ContentPolicy interface {
	Allow(ctx context.Context, text string) (bool, error)
}
