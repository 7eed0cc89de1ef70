package game

import (
	"fmt"
	"math/big"

	"github.com/robalobadob/hangman/internal/word"
)

// Record is the persisted form of State:
// { revealedWordPacked, lastGuessedChar, incorrectGuessCount, turnFlag, outcome }.
// TurnFlag is true while the guesser is to move.
type Record struct {
	RevealedPacked   *big.Int
	LastGuess        word.Symbol
	IncorrectGuesses int
	TurnFlag         bool
	Outcome          Outcome
}

// Snapshot packs the current state.
func (g *Game) Snapshot() (Record, error) {
	packed, err := word.Encode(g.State.Revealed)
	if err != nil {
		return Record{}, fmt.Errorf("pack revealed word: %w", err)
	}
	return Record{
		RevealedPacked:   packed,
		LastGuess:        g.State.LastGuess,
		IncorrectGuesses: g.State.IncorrectGuesses,
		TurnFlag:         g.State.Turn == AwaitingGuess,
		Outcome:          g.State.Outcome,
	}, nil
}

// RestoreState unpacks a record against the configured word length.
func RestoreState(cfg Config, r Record) (State, error) {
	revealed, err := word.Decode(r.RevealedPacked, cfg.wordLength)
	if err != nil {
		return State{}, fmt.Errorf("unpack revealed word: %w", err)
	}
	if r.LastGuess != word.None && !r.LastGuess.Valid() {
		return State{}, fmt.Errorf("last guess: %w", word.ErrInvalidSymbol)
	}
	if r.IncorrectGuesses < 0 || r.Outcome > GuesserWins {
		return State{}, fmt.Errorf("%w: corrupt state record", ErrInvalidConfig)
	}
	turn := AwaitingCheck
	if r.TurnFlag {
		turn = AwaitingGuess
	}
	return State{
		Revealed:         revealed,
		LastGuess:        r.LastGuess,
		IncorrectGuesses: r.IncorrectGuesses,
		Turn:             turn,
		Outcome:          r.Outcome,
	}, nil
}
