// internal/authguard/authguard.go
//
// Signature checks binding a player's key to the exact values of one action.
// Scheme: EdDSA (ed25519) via golang-jwt's signing method, over the signing
// string hex(field.Encode(payload...)).
//
// Payload shapes:
//   - guess:  [symbol]
//   - reveal: secret symbols ++ [randomness]

package authguard

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/word"
)

var (
	// ErrInvalidKey is returned when a key does not decode to the expected size.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidEncoding is returned for signatures that are not base64.
	ErrInvalidEncoding = errors.New("invalid base64")
)

var method = jwt.SigningMethodEdDSA

// SigningString is the canonical text a payload is signed as.
func SigningString(payload []field.Element) string {
	return hex.EncodeToString(field.Encode(payload...))
}

// Verify reports whether sig is a signature by signer over exactly payload.
func Verify(signer ed25519.PublicKey, sig []byte, payload []field.Element) bool {
	if len(signer) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return method.Verify(SigningString(payload), sig, signer) == nil
}

// Sign produces a signature over payload.
func Sign(priv ed25519.PrivateKey, payload []field.Element) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	return method.Sign(SigningString(payload), priv)
}

// GuessPayload is what the guesser signs when submitting a guess.
func GuessPayload(guess word.Symbol) []field.Element {
	return []field.Element{guess.Element()}
}

// RevealPayload is what the committer signs when revealing for scoring.
func RevealPayload(secret word.Word, randomness field.Element) []field.Element {
	return append(secret.Elements(), randomness)
}

// ParsePublicKey decodes a base64 ed25519 public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := DecodeBase64(s)
	if err != nil || len(b) != ed25519.PublicKeySize {
		return nil, ErrInvalidKey
	}
	return ed25519.PublicKey(b), nil
}

// ParsePrivateKey decodes a base64 ed25519 private key (64-byte form).
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	b, err := DecodeBase64(s)
	if err != nil || len(b) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	return ed25519.PrivateKey(b), nil
}

// EncodeBase64 renders key or signature bytes as raw standard base64.
func EncodeBase64(b []byte) string { return base64.RawStdEncoding.EncodeToString(b) }

// DecodeBase64 accepts raw or padded standard base64.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidEncoding
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return b, nil
}
