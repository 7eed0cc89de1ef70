package game

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/robalobadob/hangman/internal/authguard"
	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/word"
)

type player struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newPlayer(t *testing.T) player {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return player{pub: pub, priv: priv}
}

type fixture struct {
	t          *testing.T
	committer  player
	guesser    player
	secret     word.Word
	randomness field.Element
	g          *Game
}

func newFixture(t *testing.T, secret string, limit int) *fixture {
	t.Helper()
	f := &fixture{t: t, committer: newPlayer(t), guesser: newPlayer(t)}
	w, err := word.Parse(secret)
	if err != nil {
		t.Fatalf("parse secret: %v", err)
	}
	f.secret = w
	f.randomness, err = commitment.NewRandomness()
	if err != nil {
		t.Fatalf("randomness: %v", err)
	}
	f.g, err = New(f.committer.pub, f.guesser.pub, w, f.randomness, limit)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return f
}

func (f *fixture) sym(c rune) word.Symbol {
	f.t.Helper()
	s, err := word.SymbolFromChar(c)
	if err != nil {
		f.t.Fatalf("symbol %q: %v", c, err)
	}
	return s
}

func (f *fixture) guessSig(p player, s word.Symbol) []byte {
	f.t.Helper()
	sig, err := authguard.Sign(p.priv, authguard.GuessPayload(s))
	if err != nil {
		f.t.Fatalf("sign guess: %v", err)
	}
	return sig
}

func (f *fixture) revealSig(p player, w word.Word, r field.Element) []byte {
	f.t.Helper()
	sig, err := authguard.Sign(p.priv, authguard.RevealPayload(w, r))
	if err != nil {
		f.t.Fatalf("sign reveal: %v", err)
	}
	return sig
}

func (f *fixture) guess(c rune) {
	f.t.Helper()
	s := f.sym(c)
	if err := f.g.SubmitGuess(f.guesser.pub, f.guessSig(f.guesser, s), s); err != nil {
		f.t.Fatalf("guess %q: %v", c, err)
	}
}

func (f *fixture) reveal() Result {
	f.t.Helper()
	res, err := f.g.RevealAndScore(f.committer.pub, f.revealSig(f.committer, f.secret, f.randomness), f.secret, f.randomness)
	if err != nil {
		f.t.Fatalf("reveal: %v", err)
	}
	return res
}

func (f *fixture) round(c rune) Result {
	f.t.Helper()
	f.guess(c)
	return f.reveal()
}

func TestNewGame(t *testing.T) {
	f := newFixture(t, "hello", 5)
	g := f.g

	if g.ID == "" {
		t.Fatal("expected an id")
	}
	if got := g.State.Revealed.String(); got != "_____" {
		t.Fatalf("expected _____, got %s", got)
	}
	if g.State.Outcome != Ongoing || g.State.Turn != AwaitingGuess || g.State.IncorrectGuesses != 0 {
		t.Fatalf("unexpected initial state: %+v", g.State)
	}
	if g.State.LastGuess != word.None {
		t.Fatalf("expected no last guess, got %d", g.State.LastGuess)
	}
	if g.Config.WordLength() != 5 || g.Config.GuessLimit() != 5 {
		t.Fatalf("unexpected config: %d/%d", g.Config.WordLength(), g.Config.GuessLimit())
	}
	if g.Config.Commitment() != commitment.Create(f.secret, f.randomness) {
		t.Fatal("config must hold the commitment digest")
	}
}

func TestNewGameValidation(t *testing.T) {
	a, b := newPlayer(t), newPlayer(t)
	r := field.FromUint64(1)
	hello, _ := word.Parse("hello")
	blanky, _ := word.Parse("he_lo")
	long := make(word.Word, word.MaxLength+1)
	for i := range long {
		long[i] = 1
	}

	cases := []struct {
		name    string
		c, g    ed25519.PublicKey
		secret  word.Word
		limit   int
		wantErr error
	}{
		{"empty word", a.pub, b.pub, word.Word{}, 5, word.ErrLengthMismatch},
		{"too long", a.pub, b.pub, long, 5, word.ErrLengthMismatch},
		{"blank in secret", a.pub, b.pub, blanky, 5, word.ErrInvalidSymbol},
		{"bad symbol", a.pub, b.pub, word.Word{1, 40}, 5, word.ErrInvalidSymbol},
		{"zero limit", a.pub, b.pub, hello, 0, ErrInvalidConfig},
		{"same players", a.pub, a.pub, hello, 5, ErrInvalidConfig},
		{"short key", a.pub[:5], b.pub, hello, 5, ErrInvalidConfig},
	}
	for _, tc := range cases {
		_, err := New(tc.c, tc.g, tc.secret, r, tc.limit)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestHelloScenario(t *testing.T) {
	f := newFixture(t, "hello", 5)

	f.guess('h')
	if f.g.State.Turn != AwaitingCheck {
		t.Fatalf("expected awaiting check, got %s", f.g.State.Turn)
	}
	if f.g.State.LastGuess != f.sym('h') {
		t.Fatalf("expected last guess h, got %d", f.g.State.LastGuess)
	}

	res := f.reveal()
	if !res.Matched {
		t.Fatal("h is in hello")
	}
	st := f.g.State
	if st.IncorrectGuesses != 0 {
		t.Fatalf("expected 0 incorrect, got %d", st.IncorrectGuesses)
	}
	if st.Revealed.String() != "h____" {
		t.Fatalf("expected h____, got %s", st.Revealed)
	}
	if st.Outcome != Ongoing {
		t.Fatalf("expected ongoing, got %s", st.Outcome)
	}
	if st.Turn != AwaitingGuess {
		t.Fatalf("expected awaiting guess, got %s", st.Turn)
	}
}

func TestGuesserWins(t *testing.T) {
	f := newFixture(t, "hello", 5)
	for _, c := range "hel" {
		if res := f.round(c); res.Outcome != Ongoing {
			t.Fatalf("after %q: expected ongoing, got %s", c, res.Outcome)
		}
	}
	if f.g.State.Revealed.String() != "hell_" {
		t.Fatalf("expected hell_, got %s", f.g.State.Revealed)
	}
	res := f.round('o')
	if res.Outcome != GuesserWins || f.g.State.Outcome != GuesserWins {
		t.Fatalf("expected guesser wins, got %s", res.Outcome)
	}
}

func TestCommitterWinsOnExhaustion(t *testing.T) {
	f := newFixture(t, "hello", 5)
	for i, c := range "abcdf" {
		res := f.round(c)
		if res.Matched {
			t.Fatalf("%q is not in hello", c)
		}
		if f.g.State.IncorrectGuesses != i+1 {
			t.Fatalf("expected %d incorrect, got %d", i+1, f.g.State.IncorrectGuesses)
		}
		if i < 4 && res.Outcome != Ongoing {
			t.Fatalf("round %d: expected ongoing, got %s", i+1, res.Outcome)
		}
	}
	if f.g.State.Outcome != CommitterWins {
		t.Fatalf("expected committer wins, got %s", f.g.State.Outcome)
	}
	if f.g.State.Revealed.String() != "_____" {
		t.Fatalf("expected nothing revealed, got %s", f.g.State.Revealed)
	}
}

func TestCorrectGuessesDoNotCount(t *testing.T) {
	f := newFixture(t, "hello", 2)
	f.round('z')
	f.round('h')
	f.round('h')
	if f.g.State.IncorrectGuesses != 1 {
		t.Fatalf("expected 1 incorrect, got %d", f.g.State.IncorrectGuesses)
	}
	if f.g.State.Outcome != Ongoing {
		t.Fatalf("expected ongoing, got %s", f.g.State.Outcome)
	}
}

func TestGuesserWinsTieBreak(t *testing.T) {
	f := newFixture(t, "ab", 3)
	f.round('a')
	f.guess('b')

	// Counter already at the limit on an ongoing board: the completing reveal
	// satisfies both outcome checks at once.
	f.g.State.IncorrectGuesses = f.g.Config.GuessLimit()

	res := f.reveal()
	if res.Outcome != GuesserWins {
		t.Fatalf("expected guesser wins, got %s", res.Outcome)
	}
	if f.g.State.IncorrectGuesses != 3 {
		t.Fatalf("a hit must not bump the counter, got %d", f.g.State.IncorrectGuesses)
	}
}

func TestMonotonicReveal(t *testing.T) {
	f := newFixture(t, "banana", 10)
	prev := f.g.State.Revealed.Clone()
	for _, c := range "nxbqa" {
		f.round(c)
		cur := f.g.State.Revealed
		for i := range prev {
			if prev[i] != word.Blank && cur[i] != prev[i] {
				t.Fatalf("position %d changed from %d to %d", i, prev[i], cur[i])
			}
		}
		prev = cur.Clone()
	}
	if f.g.State.Outcome != GuesserWins {
		t.Fatalf("expected guesser wins, got %s", f.g.State.Outcome)
	}
}

func TestTurnAlternation(t *testing.T) {
	f := newFixture(t, "go", 5)
	for _, c := range "xy" {
		if f.g.State.Turn != AwaitingGuess {
			t.Fatalf("expected awaiting guess before %q", c)
		}
		f.guess(c)
		if f.g.State.Turn != AwaitingCheck {
			t.Fatalf("expected awaiting check after %q", c)
		}
		f.reveal()
	}
	if f.g.State.Turn != AwaitingGuess {
		t.Fatal("expected awaiting guess")
	}
}

func TestSubmitGuessPreconditions(t *testing.T) {
	f := newFixture(t, "hello", 5)
	h := f.sym('h')

	if err := f.g.SubmitGuess(f.committer.pub, f.guessSig(f.committer, h), h); !errors.Is(err, ErrUnauthorizedPlayer) {
		t.Fatalf("committer guessing: expected ErrUnauthorizedPlayer, got %v", err)
	}
	if err := f.g.SubmitGuess(f.guesser.pub, f.guessSig(f.guesser, f.sym('e')), h); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("signature over e: expected ErrInvalidSignature, got %v", err)
	}
	if err := f.g.SubmitGuess(f.guesser.pub, f.guessSig(f.committer, h), h); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("signature by committer: expected ErrInvalidSignature, got %v", err)
	}
	if err := f.g.SubmitGuess(f.guesser.pub, f.guessSig(f.guesser, word.Blank), word.Blank); !errors.Is(err, word.ErrInvalidSymbol) {
		t.Fatalf("blank guess: expected ErrInvalidSymbol, got %v", err)
	}
	if f.g.State.Turn != AwaitingGuess || f.g.State.LastGuess != word.None {
		t.Fatalf("rejected guesses must not change state: %+v", f.g.State)
	}

	f.guess('h')
	if err := f.g.SubmitGuess(f.guesser.pub, f.guessSig(f.guesser, h), h); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("double guess: expected ErrWrongTurn, got %v", err)
	}
}

func TestSubmitGuessCheckOrder(t *testing.T) {
	f := newFixture(t, "hello", 5)
	f.guess('h')
	// Wrong player, wrong turn and bad signature at once: identity is checked first.
	if err := f.g.SubmitGuess(f.committer.pub, nil, f.sym('e')); !errors.Is(err, ErrUnauthorizedPlayer) {
		t.Fatalf("expected ErrUnauthorizedPlayer, got %v", err)
	}
	// Right player, wrong turn, bad signature: turn before signature.
	if err := f.g.SubmitGuess(f.guesser.pub, nil, f.sym('e')); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("expected ErrWrongTurn, got %v", err)
	}
}

func TestRevealPreconditions(t *testing.T) {
	f := newFixture(t, "hello", 5)
	good := f.revealSig(f.committer, f.secret, f.randomness)

	if _, err := f.g.RevealAndScore(f.committer.pub, good, f.secret, f.randomness); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("reveal before guess: expected ErrWrongTurn, got %v", err)
	}

	f.guess('h')
	before := f.g.Clone()

	if _, err := f.g.RevealAndScore(f.guesser.pub, f.revealSig(f.guesser, f.secret, f.randomness), f.secret, f.randomness); !errors.Is(err, ErrUnauthorizedPlayer) {
		t.Fatalf("guesser revealing: expected ErrUnauthorizedPlayer, got %v", err)
	}

	other := f.randomness
	other[0] ^= 0xff
	if _, err := f.g.RevealAndScore(f.committer.pub, good, f.secret, other); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("signature over other randomness: expected ErrInvalidSignature, got %v", err)
	}

	jello, _ := word.Parse("jello")
	if _, err := f.g.RevealAndScore(f.committer.pub, f.revealSig(f.committer, jello, f.randomness), jello, f.randomness); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("wrong word: expected ErrCommitmentMismatch, got %v", err)
	}
	if _, err := f.g.RevealAndScore(f.committer.pub, f.revealSig(f.committer, f.secret, other), f.secret, other); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("wrong randomness: expected ErrCommitmentMismatch, got %v", err)
	}
	hell, _ := word.Parse("hell")
	if _, err := f.g.RevealAndScore(f.committer.pub, f.revealSig(f.committer, hell, f.randomness), hell, f.randomness); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("short word: expected ErrCommitmentMismatch, got %v", err)
	}

	if !sameState(f.g.State, before.State) {
		t.Fatalf("rejected reveals must not change state: %+v vs %+v", f.g.State, before.State)
	}
}

func sameState(a, b State) bool {
	return word.Equal(a.Revealed, b.Revealed) &&
		a.LastGuess == b.LastGuess &&
		a.IncorrectGuesses == b.IncorrectGuesses &&
		a.Turn == b.Turn &&
		a.Outcome == b.Outcome
}

func TestWordLengthMismatchAfterCommitment(t *testing.T) {
	// A digest over a shorter word than the board: only reachable through
	// NewCommitted with an inconsistent length.
	committer, guesser := newPlayer(t), newPlayer(t)
	secret, _ := word.Parse("hi")
	r := field.FromUint64(5)
	g, err := NewCommitted(committer.pub, guesser.pub, commitment.Create(secret, r), 3, 5)
	if err != nil {
		t.Fatalf("new committed: %v", err)
	}
	h, _ := word.SymbolFromChar('h')
	sig, _ := authguard.Sign(guesser.priv, authguard.GuessPayload(h))
	if err := g.SubmitGuess(guesser.pub, sig, h); err != nil {
		t.Fatalf("guess: %v", err)
	}
	rsig, _ := authguard.Sign(committer.priv, authguard.RevealPayload(secret, r))
	_, err = g.RevealAndScore(committer.pub, rsig, secret, r)
	if !errors.Is(err, ErrWordLengthMismatch) || !errors.Is(err, word.ErrLengthMismatch) {
		t.Fatalf("expected ErrWordLengthMismatch, got %v", err)
	}
	if g.State.Turn != AwaitingCheck {
		t.Fatal("state must be untouched")
	}
}

func TestFinishedGameRejectsEverything(t *testing.T) {
	f := newFixture(t, "a", 3)
	f.round('a')
	if f.g.State.Outcome != GuesserWins {
		t.Fatalf("expected guesser wins, got %s", f.g.State.Outcome)
	}

	b := f.sym('b')
	if err := f.g.SubmitGuess(f.guesser.pub, f.guessSig(f.guesser, b), b); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("guess after end: expected ErrGameFinished, got %v", err)
	}
	// Finished is checked before identity.
	if err := f.g.SubmitGuess(f.committer.pub, nil, b); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
	if _, err := f.g.RevealAndScore(f.committer.pub, f.revealSig(f.committer, f.secret, f.randomness), f.secret, f.randomness); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("reveal after end: expected ErrGameFinished, got %v", err)
	}
}

func TestNewCommitted(t *testing.T) {
	committer, guesser := newPlayer(t), newPlayer(t)
	secret, _ := word.Parse("go")
	r := field.FromUint64(77)
	g, err := NewCommitted(committer.pub, guesser.pub, commitment.Create(secret, r), len(secret), 1)
	if err != nil {
		t.Fatalf("new committed: %v", err)
	}
	g2 := g.Clone()
	if g2.ID != g.ID || !g2.IsCommitter(committer.pub) || !g2.IsGuesser(guesser.pub) {
		t.Fatal("clone lost identity")
	}
	if _, err := NewCommitted(committer.pub, guesser.pub, commitment.Digest{}, 0, 1); !errors.Is(err, word.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := newFixture(t, "hello", 5)
	c := f.g.Clone()
	c.State.Revealed[0] = f.sym('z')
	c.State.Turn = AwaitingCheck
	if f.g.State.Revealed[0] != word.Blank || f.g.State.Turn != AwaitingGuess {
		t.Fatal("mutating the clone leaked into the original")
	}
}
