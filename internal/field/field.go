// internal/field/field.go
//
// Fixed-width values shared by the commitment hash and the signature scheme.
// An Element is 32 bytes, big-endian. A payload (an ordered list of elements)
// has exactly one byte form: the elements concatenated in order.

package field

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the width of one element in bytes.
const Size = 32

// Element is a single fixed-width value.
type Element [Size]byte

// Zero is the all-zero element.
var Zero Element

// ErrInvalidElement is returned when text does not decode to exactly Size bytes.
var ErrInvalidElement = errors.New("invalid field element")

// FromUint64 places v in the low-order bytes.
func FromUint64(v uint64) Element {
	var e Element
	binary.BigEndian.PutUint64(e[Size-8:], v)
	return e
}

// Random samples an element from crypto/rand.
func Random() (Element, error) {
	var e Element
	if _, err := rand.Read(e[:]); err != nil {
		return Zero, fmt.Errorf("read randomness: %w", err)
	}
	return e, nil
}

// Parse decodes a hex string (optional 0x prefix).
func Parse(s string) (Element, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != Size {
		return Zero, ErrInvalidElement
	}
	var e Element
	copy(e[:], b)
	return e, nil
}

// String returns the lowercase hex form.
func (e Element) String() string { return hex.EncodeToString(e[:]) }

// MarshalText implements encoding.TextMarshaler.
func (e Element) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Element) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Encode concatenates elements in order.
func Encode(elems ...Element) []byte {
	out := make([]byte, 0, len(elems)*Size)
	for _, e := range elems {
		out = append(out, e[:]...)
	}
	return out
}
