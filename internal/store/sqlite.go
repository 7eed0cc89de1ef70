// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys,
//     immediate transactions so a transition holds the write lock from its read).
//   - Applying embedded migrations (assets/sql), recorded in _migrations.
//   - Mapping games to rows: config columns + the packed state record.

package store

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/assets"
	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/word"
)

// OpenSQLite opens (and creates if missing) a SQLite database file.
func OpenSQLite(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies embedded migrations in lexical order, skipping applied ones.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	migrations, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, m.Name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.Name, err)
		}
		log.Info().Str("migration", m.Name).Msg("applied")
	}
	return nil
}

// sqlStore is the SQLite Store implementation.
type sqlStore struct {
	db *sql.DB
}

// NewSQLStore wraps a migrated database.
func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

const gameColumns = `id, committer_key, guesser_key, word_length, guess_limit, commitment,
	revealed_word_packed, last_guessed_char, incorrect_guess_count, turn_flag, outcome,
	created_at, updated_at`

func (s *sqlStore) Create(ctx context.Context, g *game.Game) error {
	rec, err := g.Snapshot()
	if err != nil {
		return err
	}
	digest := g.Config.Commitment()
	_, err = s.db.ExecContext(ctx, `INSERT INTO games (`+gameColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		g.ID, []byte(g.Config.Committer()), []byte(g.Config.Guesser()),
		g.Config.WordLength(), g.Config.GuessLimit(), digest[:],
		rec.RevealedPacked.Text(16), int(rec.LastGuess), rec.IncorrectGuesses,
		rec.TurnFlag, int(rec.Outcome),
		formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	)
	if isConstraint(err) {
		return ErrExists
	}
	return err
}

func (s *sqlStore) Get(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id=?`, id)
	return scanGame(row)
}

func (s *sqlStore) Update(ctx context.Context, id string, fn TransitionFunc) (*game.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	g, err := scanGame(tx.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id=?`, id))
	if err != nil {
		return nil, err
	}
	mv, err := fn(g)
	if err != nil {
		return nil, err
	}
	rec, err := g.Snapshot()
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE games
		SET revealed_word_packed=?, last_guessed_char=?, incorrect_guess_count=?,
		    turn_flag=?, outcome=?, updated_at=?
		WHERE id=?`,
		rec.RevealedPacked.Text(16), int(rec.LastGuess), rec.IncorrectGuesses,
		rec.TurnFlag, int(rec.Outcome), formatTime(g.UpdatedAt), id,
	); err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM moves WHERE game_id=?`, id).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next move seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO moves
		(game_id, seq, kind, symbol, matched, incorrect_guess_count, outcome, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		id, seq, string(mv.Kind), int(mv.Symbol), mv.Matched, mv.IncorrectGuesses,
		int(mv.Outcome), formatTime(time.Now()),
	); err != nil {
		return nil, fmt.Errorf("insert move: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return g, nil
}

func (s *sqlStore) Moves(ctx context.Context, id string) ([]Move, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE id=?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT seq, kind, symbol, matched, incorrect_guess_count, outcome, created_at
		FROM moves WHERE game_id=? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Move{}
	for rows.Next() {
		var (
			mv              Move
			kind, at        string
			symbol, outcome int
		)
		if err := rows.Scan(&mv.Seq, &kind, &symbol, &mv.Matched, &mv.IncorrectGuesses, &outcome, &at); err != nil {
			return nil, err
		}
		mv.Kind = MoveKind(kind)
		mv.Symbol = word.Symbol(symbol)
		mv.Outcome = game.Outcome(outcome)
		mv.At = parseTime(at)
		out = append(out, mv)
	}
	return out, rows.Err()
}

// scanGame converts a games row back into a Game.
func scanGame(row *sql.Row) (*game.Game, error) {
	var (
		id, packedHex, created, updated string
		committer, guesser, digestBytes []byte
		wordLength, guessLimit          int
		lastGuess, incorrect, outcome   int
		turnFlag                        bool
	)
	if err := row.Scan(&id, &committer, &guesser, &wordLength, &guessLimit, &digestBytes,
		&packedHex, &lastGuess, &incorrect, &turnFlag, &outcome, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(digestBytes) != commitment.Size {
		return nil, fmt.Errorf("game %s: commitment is %d bytes", id, len(digestBytes))
	}
	var digest commitment.Digest
	copy(digest[:], digestBytes)

	cfg, err := game.NewConfig(ed25519.PublicKey(committer), ed25519.PublicKey(guesser), wordLength, guessLimit, digest)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}
	packed, ok := new(big.Int).SetString(packedHex, 16)
	if !ok {
		return nil, fmt.Errorf("game %s: bad packed word %q", id, packedHex)
	}
	st, err := game.RestoreState(cfg, game.Record{
		RevealedPacked:   packed,
		LastGuess:        word.Symbol(lastGuess),
		IncorrectGuesses: incorrect,
		TurnFlag:         turnFlag,
		Outcome:          game.Outcome(outcome),
	})
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}
	return &game.Game{
		ID:        id,
		Config:    cfg,
		State:     st,
		CreatedAt: parseTime(created),
		UpdatedAt: parseTime(updated),
	}, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// parseTime parses RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
