// db.go
//
// Store selection for the hangman server.
//   - STORE=memory: games live in process memory and vanish on restart.
//   - STORE=sqlite: games live in DB_PATH; embedded migrations run at startup.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/store"
)

// openStore builds the configured Store and a func that releases it.
func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.Store != config.StoreSQLite {
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", cfg.DBPath).Msg("sqlite store ready")

	return store.NewSQLStore(db), func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close db")
		}
	}, nil
}
