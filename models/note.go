package models

// NoteCreate è il corpo della richiesta di creazione di una nota.
// Content è un puntatore: il campo deve esserci, ma "" è un contenuto valido.
type NoteCreate struct {
	Content *string `json:"content" binding:"required"`
}

// Note rappresenta una nota salvata. Le note sono immutabili dopo la scrittura.
type Note struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Owner   string `json:"owner"`
}
