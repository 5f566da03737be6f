package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"notes-service/db"
	"notes-service/handlers"
	"notes-service/policy"
	"notes-service/spell"
	"notes-service/utils"
)

func main() {
	configPath := os.Getenv("NOTES_CONFIG")
	if configPath == "" {
		configPath = "config.json"
	}

	config := loadConfig(configPath)

	store, closeStore, err := openNoteStore(config)
	if err != nil {
		log.Fatal().Err(err).Str("backend", config.Storage.Backend).Msg("Errore nell'apertura dello store delle note")
	}
	defer closeStore()

	users, err := db.NewSQLiteUserStore(config.Users.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.Users.Path).Msg("Errore nell'apertura del database utenti")
	}
	defer users.Close()

	for _, seed := range config.Users.Seed {
		if err := users.AddUser(context.Background(), seed.Username, seed.Password); err != nil {
			log.Fatal().Err(err).Str("user", seed.Username).Msg("Errore nella creazione dell'utente")
		}
	}

	speller := spell.NewClient(
		config.Speller.URL,
		time.Duration(config.Speller.TimeoutSeconds)*time.Second,
		spell.WithLang(config.Speller.Lang),
		spell.WithOptions(config.Speller.Options),
	)

	deps := handlers.Dependencies{
		Notes:   store,
		Users:   users,
		Speller: speller,
		Hub:     handlers.NewHub(),
	}

	if config.Policy.Script != "" {
		script, err := policy.Load(config.Policy.Script)
		if err != nil {
			log.Fatal().Err(err).Msg("Errore nel caricamento della regola sui contenuti")
		}
		deps.Policy = script.WithTimeout(time.Duration(config.Policy.TimeoutMillis) * time.Millisecond)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), handlers.CORS(), handlers.RequestID(), handlers.RequestLogger())
	handlers.SetupRoutes(router)
	handlers.SetupAPIRoutes(router, deps)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.Port),
		Handler: router,
	}

	// Avvia il server HTTP in una goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Errore nell'avvio del server")
		}
	}()

	log.Info().Int("port", config.Server.Port).Str("backend", config.Storage.Backend).Msg("🚀 Server note avviato")

	// Gestisci chiusura corretta
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("Arresto del server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Arresto non pulito del server")
	}
}

// loadConfig carica la configurazione, con fallback ai valori di default,
// e configura il logger prima di segnalare eventuali problemi
func loadConfig(path string) *utils.Config {
	config, loadErr := utils.LoadConfig(path)
	if loadErr != nil {
		config = utils.DefaultConfig()
	}

	if err := utils.SetupLogger(config.Log); err != nil {
		log.Warn().Err(err).Msg("Configurazione dei log non valida")
	}
	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", path).Msg("Configurazione non caricata, uso i valori di default")
	}

	return config
}
