package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const userKey = "username"

// BasicAuth risolve l'identità a ogni richiesta tramite il verificatore
func BasicAuth(verifier UserVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			abortUnauthorized(c)
			return
		}

		user, err := verifier.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("❌ Errore nella verifica delle credenziali")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Credential verification failed"})
			return
		}
		if user == nil {
			abortUnauthorized(c)
			return
		}

		c.Set(userKey, user.Username)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="notes"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
}

// CurrentUser restituisce l'utente risolto da BasicAuth
func CurrentUser(c *gin.Context) string {
	return c.GetString(userKey)
}
