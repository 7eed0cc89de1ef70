// internal/store/store.go
//
// Persistence for hangman games.
// Each game is one Config + State record plus an append-only move log.
// Update is the only way state changes after Create: it runs a transition
// on a private copy and writes the result (and its move) atomically, or
// writes nothing if the transition fails.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/word"
)

var (
	// ErrNotFound is returned for unknown game IDs.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned by Create for a duplicate ID.
	ErrExists = errors.New("game already exists")
)

// MoveKind names the transition a Move records.
type MoveKind string

const (
	MoveGuess  MoveKind = "guess"
	MoveReveal MoveKind = "reveal"
)

// Move is one accepted transition. The secret word never appears here.
type Move struct {
	Seq              int
	Kind             MoveKind
	Symbol           word.Symbol
	Matched          bool // reveal only
	IncorrectGuesses int
	Outcome          game.Outcome
	At               time.Time
}

// TransitionFunc applies one transition to g and describes it as a Move.
// Seq and At are filled in by the store.
type TransitionFunc func(g *game.Game) (Move, error)

// Store defines the persistence interface for games.
type Store interface {
	// Create persists a freshly initialised game.
	Create(ctx context.Context, g *game.Game) error

	// Get returns a copy of the latest committed game.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn against the latest state and commits the result atomically.
	// Calls for the same game are serialised.
	Update(ctx context.Context, id string, fn TransitionFunc) (*game.Game, error)

	// Moves lists accepted transitions in order.
	Moves(ctx context.Context, id string) ([]Move, error)
}
