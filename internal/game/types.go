// internal/game/types.go
//
// Core type definitions for the hangman game engine.
// Defines:
//   - Turn, Outcome: the two halves of a round and the game result.
//   - Config: immutable parameters fixed when the game is created.
//   - State: the mutable board, changed only by engine.go transitions.
//   - Game: one game instance (Config + State + bookkeeping).

package game

import (
	"crypto/ed25519"
	"time"

	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/word"
)

// Turn says which half-round is pending.
type Turn uint8

const (
	AwaitingGuess Turn = iota
	AwaitingCheck
)

func (t Turn) String() string {
	if t == AwaitingCheck {
		return "awaiting_check"
	}
	return "awaiting_guess"
}

// Outcome is the game result. Values match the persisted encoding.
type Outcome uint8

const (
	Ongoing       Outcome = 0
	CommitterWins Outcome = 1
	GuesserWins   Outcome = 2
)

func (o Outcome) String() string {
	switch o {
	case CommitterWins:
		return "committer_wins"
	case GuesserWins:
		return "guesser_wins"
	}
	return "ongoing"
}

// Finished reports whether the outcome is terminal.
func (o Outcome) Finished() bool { return o != Ongoing }

// Config holds the parameters bound once at creation.
// Fields are unexported so the values cannot change after NewConfig.
type Config struct {
	committer  ed25519.PublicKey
	guesser    ed25519.PublicKey
	wordLength int
	guessLimit int
	digest     commitment.Digest
}

// Committer is the key of the player who chose the word and checks guesses.
func (c Config) Committer() ed25519.PublicKey { return append(ed25519.PublicKey(nil), c.committer...) }

// Guesser is the key of the player who submits letters.
func (c Config) Guesser() ed25519.PublicKey { return append(ed25519.PublicKey(nil), c.guesser...) }

func (c Config) WordLength() int { return c.wordLength }

func (c Config) GuessLimit() int { return c.guessLimit }

func (c Config) Commitment() commitment.Digest { return c.digest }

// State is the mutable board.
type State struct {
	Revealed         word.Word   // agreed length; blanks until revealed
	LastGuess        word.Symbol // word.None until the first guess
	IncorrectGuesses int
	Turn             Turn
	Outcome          Outcome
}

func (s State) clone() State {
	s.Revealed = s.Revealed.Clone()
	return s
}

// Game is a single commit-and-reveal hangman session.
type Game struct {
	ID        string
	Config    Config
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Result summarises one RevealAndScore call.
type Result struct {
	Matched bool
	Outcome Outcome
}
