// internal/word/codec.go
//
// Packing a Word into a single integer and back.
// Layout: symbol i occupies bits [i*Bits, (i+1)*Bits), so index 0 sits in the
// low-order bits. A packed value only means something together with its length.

package word

import (
	"math/big"
)

const symbolMask = 1<<Bits - 1

// Encode packs symbols into one integer.
func Encode(symbols []Symbol) (*big.Int, error) {
	if len(symbols) > MaxLength {
		return nil, ErrLengthMismatch
	}
	out := new(big.Int)
	for i, s := range symbols {
		if !s.Valid() {
			return nil, ErrInvalidSymbol
		}
		out.Or(out, new(big.Int).Lsh(big.NewInt(int64(s)), uint(i*Bits)))
	}
	return out, nil
}

// Decode unpacks length symbols from packed.
// The value must not be negative or carry bits beyond length*Bits.
func Decode(packed *big.Int, length int) (Word, error) {
	if length <= 0 || length > MaxLength || packed == nil {
		return nil, ErrLengthMismatch
	}
	if packed.Sign() < 0 || packed.BitLen() > length*Bits {
		return nil, ErrLengthMismatch
	}
	w := make(Word, length)
	for i := range w {
		var group uint
		for b := 0; b < Bits; b++ {
			group |= packed.Bit(i*Bits+b) << b
		}
		s := Symbol(group & symbolMask)
		if !s.Valid() {
			return nil, ErrInvalidSymbol
		}
		w[i] = s
	}
	return w, nil
}

// Pack is Encode on a Word.
func (w Word) Pack() (*big.Int, error) { return Encode(w) }
