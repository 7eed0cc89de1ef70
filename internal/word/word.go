// internal/word/word.go
//
// Symbols and words for the hangman board.
// Alphabet:
//   - 'a'..'z' map to 1..26.
//   - '_' (blank, an unrevealed position) maps to 27.
//
// Every symbol fits in Bits (5) bits, so a word of MaxLength symbols
// packs into a single 32-byte field element (see codec.go).
//
// The match helpers below (ExtractMatches, RevealMatches, Equal) visit every
// position unconditionally; none of them returns early on the first hit.

package word

import (
	"errors"
	"strings"

	"github.com/robalobadob/hangman/internal/field"
)

// Symbol is one letter of the alphabet or the blank marker.
type Symbol uint8

const (
	// None marks "no symbol yet" (e.g. no guess submitted). Never valid in a Word.
	None Symbol = 0
	// Blank is the '_' placeholder for an unrevealed position.
	Blank Symbol = 27

	firstLetter Symbol = 1
	lastLetter  Symbol = 26
)

// Bits is the width of one packed symbol.
const Bits = 5

// MaxLength is the longest word that still packs into one field element.
const MaxLength = 50

var (
	// ErrInvalidSymbol is returned for values outside 1..27 or characters outside a..z and '_'.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrLengthMismatch is returned when a length disagrees with the data it describes.
	ErrLengthMismatch = errors.New("length mismatch")
)

// Valid reports whether s is in 1..27.
func (s Symbol) Valid() bool { return s >= firstLetter && s <= Blank }

// IsLetter reports whether s is in 1..26.
func (s Symbol) IsLetter() bool { return s >= firstLetter && s <= lastLetter }

// Element lifts the symbol into a field element.
func (s Symbol) Element() field.Element { return field.FromUint64(uint64(s)) }

// SymbolFromChar maps 'a'..'z' and '_' onto 1..27.
func SymbolFromChar(c rune) (Symbol, error) {
	switch {
	case c == '_':
		return Blank, nil
	case c >= 'a' && c <= 'z':
		return Symbol(c-'a') + firstLetter, nil
	}
	return None, ErrInvalidSymbol
}

// CharFromSymbol is the inverse of SymbolFromChar.
func CharFromSymbol(s Symbol) (rune, error) {
	switch {
	case s == Blank:
		return '_', nil
	case s.IsLetter():
		return 'a' + rune(s-firstLetter), nil
	}
	return 0, ErrInvalidSymbol
}

// Word is an ordered, fixed-length sequence of symbols. Index 0 is the first character.
type Word []Symbol

// Parse converts a string over a..z and '_' into a Word.
// Input is taken as-is: callers lowercase/trim at the boundary.
func Parse(s string) (Word, error) {
	w := make(Word, 0, len(s))
	for _, c := range s {
		sym, err := SymbolFromChar(c)
		if err != nil {
			return nil, err
		}
		w = append(w, sym)
	}
	return w, nil
}

// Blanks returns a word of n blank symbols.
func Blanks(n int) Word {
	w := make(Word, n)
	for i := range w {
		w[i] = Blank
	}
	return w
}

// String renders the word. Invalid symbols render as '?'.
func (w Word) String() string {
	var b strings.Builder
	b.Grow(len(w))
	for _, s := range w {
		c, err := CharFromSymbol(s)
		if err != nil {
			c = '?'
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Validate reports ErrInvalidSymbol if any position is outside 1..27.
func (w Word) Validate() error {
	for _, s := range w {
		if !s.Valid() {
			return ErrInvalidSymbol
		}
	}
	return nil
}

// Letters reports whether every position is a letter (no blanks).
func (w Word) Letters() bool {
	for _, s := range w {
		if !s.IsLetter() {
			return false
		}
	}
	return true
}

// Elements lifts every symbol into a field element, in order.
func (w Word) Elements() []field.Element {
	out := make([]field.Element, len(w))
	for i, s := range w {
		out[i] = s.Element()
	}
	return out
}

// Clone returns an independent copy.
func (w Word) Clone() Word {
	if w == nil {
		return nil
	}
	return append(Word(nil), w...)
}

// ExtractMatches returns, per position, whether the symbol equals target.
func (w Word) ExtractMatches(target Symbol) []bool {
	out := make([]bool, len(w))
	for i, s := range w {
		out[i] = s == target
	}
	return out
}

// HasAnyMatch reports whether any position equals target.
func (w Word) HasAnyMatch(target Symbol) bool {
	found := false
	for _, m := range w.ExtractMatches(target) {
		found = found || m
	}
	return found
}

// RevealMatches returns a copy of revealed where every position at which
// secret holds target is replaced by target. Other positions keep their value.
func RevealMatches(revealed, secret Word, target Symbol) (Word, error) {
	if len(revealed) != len(secret) {
		return nil, ErrLengthMismatch
	}
	matches := secret.ExtractMatches(target)
	out := make(Word, len(revealed))
	for i := range revealed {
		out[i] = sel(matches[i], target, revealed[i])
	}
	return out, nil
}

// Equal reports whether a and b have the same length and symbols.
func Equal(a, b Word) bool {
	if len(a) != len(b) {
		return false
	}
	eq := true
	for i := range a {
		eq = eq && a[i] == b[i]
	}
	return eq
}

func sel(cond bool, then, otherwise Symbol) Symbol {
	if cond {
		return then
	}
	return otherwise
}
