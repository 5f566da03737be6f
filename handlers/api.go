package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"notes-service/models"
)

const orthographicErrorDetail = "Orthographic errors found in the note"

// Dependencies raccoglie i collaboratori delle route API.
// Policy e Hub sono opzionali.
type Dependencies struct {
	Notes   NoteStore
	Users   UserVerifier
	Speller SpellChecker
	Policy  ContentPolicy
	Hub     *Hub
}

// SetupAPIRoutes configura tutte le rotte API
func SetupAPIRoutes(router *gin.Engine, deps Dependencies) {
	notes := router.Group("/notes", BasicAuth(deps.Users))

	// Aggiunta di una nuova nota
	notes.POST("/", func(c *gin.Context) {
		owner := CurrentUser(c)

		var requestData models.NoteCreate
		if err := c.ShouldBindJSON(&requestData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid request body: %v", err)})
			return
		}

		content := *requestData.Content

		annotations, err := validateContent(c.Request.Context(), deps, content)
		if err != nil {
			respondError(c, err, annotations)
			return
		}

		note, err := deps.Notes.Append(c.Request.Context(), content, owner)
		if err != nil {
			respondError(c, err, nil)
			return
		}

		log.Info().Str("request_id", RequestIDFrom(c)).Str("user", owner).Int("note_id", note.ID).Msg("📝 Nota salvata")

		if deps.Hub != nil {
			deps.Hub.Broadcast(owner, models.WSNoteCreated, note)
		}

		c.JSON(http.StatusOK, note)
	})

	// Note dell'utente corrente, nell'ordine di salvataggio
	notes.GET("/", func(c *gin.Context) {
		owner := CurrentUser(c)

		userNotes, err := listOwnerNotes(c.Request.Context(), deps.Notes, owner)
		if err != nil {
			respondError(c, err, nil)
			return
		}

		c.JSON(http.StatusOK, userNotes)
	})

	if deps.Hub != nil {
		notes.GET("/ws", deps.Hub.HandleWebSocket)
	}
}

// validateContent applica il controllo ortografico e la regola opzionale.
// Restituisce ErrInvalidContent con le eventuali annotazioni. La decisione
// sull'ortografia coincide con spell.Client.IsClean.
func validateContent(ctx context.Context, deps Dependencies, content string) ([]models.SpellError, error) {
	annotations, err := deps.Speller.Check(ctx, content)
	if err != nil {
		log.Warn().Err(err).Msg("❌ Controllo ortografico fallito, nota rifiutata")
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidContent, err)
	}
	if len(annotations) > 0 {
		return annotations, models.ErrInvalidContent
	}

	if deps.Policy != nil {
		allowed, err := deps.Policy.Allow(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("regola sui contenuti: %w", err)
		}
		if !allowed {
			return nil, models.ErrInvalidContent
		}
	}

	return nil, nil
}

func listOwnerNotes(ctx context.Context, store NoteStore, owner string) ([]models.Note, error) {
	if lister, ok := store.(OwnerLister); ok {
		return lister.ListByOwner(ctx, owner)
	}

	all, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	userNotes := make([]models.Note, 0, len(all))
	for _, note := range all {
		if note.Owner == owner {
			userNotes = append(userNotes, note)
		}
	}
	return userNotes, nil
}

// respondError traduce gli errori di dominio in codici HTTP
func respondError(c *gin.Context, err error, annotations []models.SpellError) {
	switch {
	case errors.Is(err, models.ErrInvalidContent):
		body := gin.H{"detail": orthographicErrorDetail}
		if len(annotations) > 0 {
			body["errors"] = annotations
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, models.ErrUnauthorized):
		abortUnauthorized(c)
	case errors.Is(err, models.ErrStorageUnavailable):
		log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("❌ Storage delle note non disponibile")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Storage unavailable"})
	default:
		log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("❌ Errore interno")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
