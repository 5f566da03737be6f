package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Migration rappresenta una singola migration del database
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Tutte le migration disponibili in ordine di versione.
// La versione 1 corrisponde allo schema creato da InitTables.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
	},
	{
		Version:     2,
		Description: "Add owner index on notes",
		SQL:         `CREATE INDEX idx_notes_owner ON notes(owner)`,
	},
}

// ApplyMigrations applica tutte le migration necessarie
func (m *MySQLNoteStore) ApplyMigrations() error {
	log.Info().Msg("🔄 Controllo migration del database...")

	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("errore nella creazione della tabella migrations: %v", err)
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("errore nel recupero della versione attuale: %v", err)
	}

	log.Info().Int("version", currentVersion).Msg("📊 Versione database attuale")

	applied := 0
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log.Info().Int("version", migration.Version).Str("description", migration.Description).Msg("🔄 Applicando migration")
		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("errore nell'applicazione della migration %d: %v", migration.Version, err)
		}
		applied++
	}

	history, err := m.GetAppliedMigrations()
	if err != nil {
		return fmt.Errorf("errore nella lettura delle migration applicate: %v", err)
	}
	versions := make([]int, 0, len(history))
	for _, migration := range history {
		versions = append(versions, migration.Version)
	}

	if applied == 0 {
		log.Info().Ints("versions", versions).Msg("✅ Database aggiornato, nessuna migration necessaria")
	} else {
		log.Info().Int("applied", applied).Ints("versions", versions).Msg("🎉 Migration applicate con successo")
	}

	return nil
}

// createMigrationsTable crea la tabella per tracciare le migration
func (m *MySQLNoteStore) createMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// getCurrentVersion ottiene la versione corrente del database
func (m *MySQLNoteStore) getCurrentVersion() (int, error) {
	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigration applica una singola migration in transazione
func (m *MySQLNoteStore) applyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if migration.SQL != "" {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("errore nell'esecuzione SQL: %v", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO schema_migrations (version, description, applied_at)
		VALUES (?, ?, ?)
	`, migration.Version, migration.Description, time.Now())
	if err != nil {
		return fmt.Errorf("errore nel registrare la migration: %v", err)
	}

	return tx.Commit()
}

// GetAppliedMigrations restituisce tutte le migration applicate
func (m *MySQLNoteStore) GetAppliedMigrations() ([]Migration, error) {
	rows, err := m.db.Query(`
		SELECT version, description
		FROM schema_migrations
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appliedMigrations []Migration
	for rows.Next() {
		var migration Migration
		if err := rows.Scan(&migration.Version, &migration.Description); err != nil {
			return nil, err
		}
		appliedMigrations = append(appliedMigrations, migration)
	}

	return appliedMigrations, rows.Err()
}
