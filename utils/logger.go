package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configura il logger globale di zerolog
func SetupLogger(cfg LogConfig) error {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	if cfg.Level == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return nil
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return fmt.Errorf("livello di log non valido %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	return nil
}
