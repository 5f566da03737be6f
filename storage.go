package main

import (
	"fmt"

	"notes-service/db"
	"notes-service/handlers"
	"notes-service/persistence"
	"notes-service/utils"
)

// openNoteStore apre il backend configurato e restituisce la funzione di chiusura
func openNoteStore(config *utils.Config) (handlers.NoteStore, func() error, error) {
	noop := func() error { return nil }

	switch config.Storage.Backend {
	case utils.BackendCSV:
		store := db.NewCSVNoteStore(config.Storage.Path)
		if err := store.Initialize(); err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case utils.BackendBolt:
		store, err := persistence.NewBoltNoteStore(config.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case utils.BackendMySQL:
		store, err := db.NewMySQLNoteStore(config.Database.GetDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("errore nella connessione al database MySQL: %w", err)
		}
		if err := store.InitTables(); err != nil {
			store.Close()
			return nil, nil, err
		}
		if err := store.ApplyMigrations(); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil

	case utils.BackendMemory:
		return db.NewMemoryNoteStore(), noop, nil
	}

	return nil, nil, fmt.Errorf("backend di storage sconosciuto: %q", config.Storage.Backend)
}
