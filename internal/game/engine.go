// internal/game/engine.go
//
// Core game engine for a single commit-and-reveal hangman session.
// Responsibilities:
//   - Create games from a secret word + randomness (only the digest is kept),
//     or directly from a digest computed by the committer.
//   - SubmitGuess: the guesser's signed half-round.
//   - RevealAndScore: the committer's signed reveal, checked against the
//     commitment, which scores the pending guess.
//
// Rules:
//   - Preconditions are checked in a fixed order; the first failure wins and
//     the game is left exactly as it was.
//   - Outcome is decided by two checks in order: guess limit reached
//     (committer wins), then word complete (guesser wins). The second
//     overrides the first.
//   - Once the outcome is terminal every transition is rejected.
//
// Callers serialise transitions per game (see internal/store).
package game

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/authguard"
	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/word"
)

var (
	ErrGameFinished       = errors.New("game already finished")
	ErrUnauthorizedPlayer = errors.New("unauthorized player")
	ErrWrongTurn          = errors.New("wrong turn")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrCommitmentMismatch = errors.New("commitment mismatch")
	// ErrWordLengthMismatch matches word.ErrLengthMismatch under errors.Is.
	ErrWordLengthMismatch = fmt.Errorf("revealed word: %w", word.ErrLengthMismatch)
	ErrInvalidConfig      = errors.New("invalid game config")
)

// NewConfig validates and binds the immutable game parameters.
func NewConfig(committer, guesser ed25519.PublicKey, wordLength, guessLimit int, digest commitment.Digest) (Config, error) {
	if len(committer) != ed25519.PublicKeySize || len(guesser) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("%w: player keys must be %d bytes", ErrInvalidConfig, ed25519.PublicKeySize)
	}
	if committer.Equal(guesser) {
		return Config{}, fmt.Errorf("%w: committer and guesser must differ", ErrInvalidConfig)
	}
	if wordLength < 1 || wordLength > word.MaxLength {
		return Config{}, fmt.Errorf("%w: word length must be 1-%d", word.ErrLengthMismatch, word.MaxLength)
	}
	if guessLimit < 1 {
		return Config{}, fmt.Errorf("%w: guess limit must be >= 1", ErrInvalidConfig)
	}
	return Config{
		committer:  append(ed25519.PublicKey(nil), committer...),
		guesser:    append(ed25519.PublicKey(nil), guesser...),
		wordLength: wordLength,
		guessLimit: guessLimit,
		digest:     digest,
	}, nil
}

// New creates a game committed to secret under randomness.
// The secret itself is not retained; the committer must present it again
// on every reveal.
func New(committer, guesser ed25519.PublicKey, secret word.Word, randomness field.Element, guessLimit int) (*Game, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}
	if !secret.Letters() {
		return nil, fmt.Errorf("%w: secret word must be letters a-z", word.ErrInvalidSymbol)
	}
	return NewCommitted(committer, guesser, commitment.Create(secret, randomness), len(secret), guessLimit)
}

// NewCommitted creates a game from a digest the committer computed themselves.
func NewCommitted(committer, guesser ed25519.PublicKey, digest commitment.Digest, wordLength, guessLimit int) (*Game, error) {
	cfg, err := NewConfig(committer, guesser, wordLength, guessLimit, digest)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Game{
		ID:     uuid.NewString(),
		Config: cfg,
		State: State{
			Revealed:  word.Blanks(wordLength),
			LastGuess: word.None,
			Turn:      AwaitingGuess,
			Outcome:   Ongoing,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SubmitGuess records the guesser's letter and hands the turn to the committer.
//
// Checks, in order: game not finished, actor is the guesser, it is the
// guesser's turn, signature over [guess] is valid, guess is a letter.
func (g *Game) SubmitGuess(actor ed25519.PublicKey, sig []byte, guess word.Symbol) error {
	if g.State.Outcome.Finished() {
		return ErrGameFinished
	}
	if !actor.Equal(g.Config.guesser) {
		return ErrUnauthorizedPlayer
	}
	if g.State.Turn != AwaitingGuess {
		return ErrWrongTurn
	}
	if !authguard.Verify(actor, sig, authguard.GuessPayload(guess)) {
		return ErrInvalidSignature
	}
	if !guess.IsLetter() {
		return word.ErrInvalidSymbol
	}

	g.State.LastGuess = guess
	g.State.Turn = AwaitingCheck
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// RevealAndScore checks the committer's reveal against the commitment and
// scores the pending guess.
//
// Checks, in order: game not finished, actor is the committer, it is the
// committer's turn, signature over secret++[randomness] is valid, the pair
// reproduces the commitment, the secret has the game's length.
func (g *Game) RevealAndScore(actor ed25519.PublicKey, sig []byte, secret word.Word, randomness field.Element) (Result, error) {
	if g.State.Outcome.Finished() {
		return Result{}, ErrGameFinished
	}
	if !actor.Equal(g.Config.committer) {
		return Result{}, ErrUnauthorizedPlayer
	}
	if g.State.Turn != AwaitingCheck {
		return Result{}, ErrWrongTurn
	}
	if !authguard.Verify(actor, sig, authguard.RevealPayload(secret, randomness)) {
		return Result{}, ErrInvalidSignature
	}
	if !commitment.Verify(secret, randomness, g.Config.digest) {
		return Result{}, ErrCommitmentMismatch
	}
	if len(secret) != len(g.State.Revealed) {
		return Result{}, ErrWordLengthMismatch
	}

	guess := g.State.LastGuess
	matched := secret.HasAnyMatch(guess)

	incorrect := g.State.IncorrectGuesses
	if !matched {
		incorrect++
	}

	revealed, err := word.RevealMatches(g.State.Revealed, secret, guess)
	if err != nil {
		return Result{}, ErrWordLengthMismatch
	}

	outcome := g.State.Outcome
	if incorrect == g.Config.guessLimit {
		outcome = CommitterWins
	}
	if word.Equal(revealed, secret) {
		outcome = GuesserWins
	}

	g.State = State{
		Revealed:         revealed,
		LastGuess:        guess,
		IncorrectGuesses: incorrect,
		Turn:             AwaitingGuess,
		Outcome:          outcome,
	}
	g.UpdatedAt = time.Now().UTC()
	return Result{Matched: matched, Outcome: outcome}, nil
}

// Clone returns a deep copy; mutations on it never reach g.
func (g *Game) Clone() *Game {
	c := *g
	c.Config.committer = append(ed25519.PublicKey(nil), g.Config.committer...)
	c.Config.guesser = append(ed25519.PublicKey(nil), g.Config.guesser...)
	c.State = g.State.clone()
	return &c
}

// IsCommitter reports whether key belongs to the committer.
func (g *Game) IsCommitter(key ed25519.PublicKey) bool { return key.Equal(g.Config.committer) }

// IsGuesser reports whether key belongs to the guesser.
func (g *Game) IsGuesser(key ed25519.PublicKey) bool { return key.Equal(g.Config.guesser) }
