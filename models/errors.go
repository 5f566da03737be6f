package models

import "errors"

var (
	// ErrUnauthorized credenziali mancanti o errate
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidContent il contenuto non ha superato il controllo ortografico
	ErrInvalidContent = errors.New("invalid content")

	// ErrStorageUnavailable la risorsa di salvataggio non è leggibile
	ErrStorageUnavailable = errors.New("storage unavailable")
)
