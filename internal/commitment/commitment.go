// internal/commitment/commitment.go
//
// Hash commitment to the secret word.
// The digest is BLAKE2b-256 over the word's symbols followed by the blinding
// randomness, each as a 32-byte field element. The packed form is NOT hashed:
// the raw symbol sequence is.
//
// Binding rests on the randomness being fresh per game; never reuse it.

package commitment

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/word"
)

// Size is the digest width in bytes.
const Size = blake2b.Size256

// Digest is a commitment value.
type Digest [Size]byte

// ErrInvalidDigest is returned when text does not decode to a digest.
var ErrInvalidDigest = errors.New("invalid commitment digest")

// Create computes Hash(secret ++ [randomness]).
func Create(secret word.Word, randomness field.Element) Digest {
	elems := append(secret.Elements(), randomness)
	return Digest(blake2b.Sum256(field.Encode(elems...)))
}

// Verify recomputes the digest from the claimed pair and compares exactly.
func Verify(claimed word.Word, randomness field.Element, d Digest) bool {
	got := Create(claimed, randomness)
	return subtle.ConstantTimeCompare(got[:], d[:]) == 1
}

// NewRandomness samples blinding randomness for a new game.
func NewRandomness() (field.Element, error) { return field.Random() }

// Parse decodes a hex digest (optional 0x prefix).
func Parse(s string) (Digest, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != Size {
		return Digest{}, ErrInvalidDigest
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
