// Package playerkey is the player-side helper behind cmd/hangman-key: it
// generates keypairs, signs moves and computes commitments offline so the
// secret word and private key never have to reach the server together.
package playerkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/hangman/internal/authguard"
	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/word"
)

// Config holds one invocation. At most one of Guess, Reveal and Commit is
// set; none means generate a keypair.
type Config struct {
	Guess      string
	Reveal     string
	Commit     string
	Randomness string
	PrivateKey string
}

// ParseConfig parses flags into a Config. defaultKey seeds -key.
func ParseConfig(fs *flag.FlagSet, args []string, defaultKey string) (Config, error) {
	cfg := Config{PrivateKey: defaultKey}
	fs.StringVar(&cfg.Guess, "guess", "", "sign a guess of this character")
	fs.StringVar(&cfg.Reveal, "reveal", "", "sign a reveal of this word (needs -randomness)")
	fs.StringVar(&cfg.Commit, "commit", "", "print the commitment for this word")
	fs.StringVar(&cfg.Randomness, "randomness", "", "hex randomness for -reveal/-commit")
	fs.StringVar(&cfg.PrivateKey, "key", cfg.PrivateKey, "base64 private key (default: $HANGMAN_PRIVATE_KEY)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	set := 0
	for _, v := range []string{cfg.Guess, cfg.Reveal, cfg.Commit} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return Config{}, errors.New("use only one of -guess, -reveal, -commit")
	}
	return cfg, nil
}

// Run performs the configured action and writes env-style lines to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	switch {
	case cfg.Guess != "":
		return signGuess(cfg, out)
	case cfg.Reveal != "":
		return signReveal(cfg, out)
	case cfg.Commit != "":
		return commit(cfg, out, reader)
	}
	return keygen(out, reader)
}

func keygen(out io.Writer, reader io.Reader) error {
	pub, priv, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate player key: %w", err)
	}
	_, err = fmt.Fprintf(out, "HANGMAN_PUBLIC_KEY=%s\nHANGMAN_PRIVATE_KEY=%s\n",
		authguard.EncodeBase64(pub), authguard.EncodeBase64(priv))
	return err
}

func signGuess(cfg Config, out io.Writer) error {
	priv, err := authguard.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	r := []rune(strings.ToLower(cfg.Guess))
	if len(r) != 1 {
		return fmt.Errorf("%w: guess must be one character", word.ErrInvalidSymbol)
	}
	sym, err := word.SymbolFromChar(r[0])
	if err != nil {
		return err
	}
	sig, err := authguard.Sign(priv, authguard.GuessPayload(sym))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "HANGMAN_SIGNATURE=%s\n", authguard.EncodeBase64(sig))
	return err
}

func signReveal(cfg Config, out io.Writer) error {
	priv, err := authguard.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	secret, err := word.Parse(strings.ToLower(cfg.Reveal))
	if err != nil {
		return err
	}
	randomness, err := field.Parse(cfg.Randomness)
	if err != nil {
		return fmt.Errorf("randomness: %w", err)
	}
	sig, err := authguard.Sign(priv, authguard.RevealPayload(secret, randomness))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "HANGMAN_SIGNATURE=%s\n", authguard.EncodeBase64(sig))
	return err
}

func commit(cfg Config, out io.Writer, reader io.Reader) error {
	secret, err := word.Parse(strings.ToLower(cfg.Commit))
	if err != nil {
		return err
	}
	if !secret.Letters() {
		return fmt.Errorf("%w: secret word must be letters a-z", word.ErrInvalidSymbol)
	}
	var randomness field.Element
	if cfg.Randomness == "" {
		if _, err := io.ReadFull(reader, randomness[:]); err != nil {
			return fmt.Errorf("generate randomness: %w", err)
		}
	} else if randomness, err = field.Parse(cfg.Randomness); err != nil {
		return fmt.Errorf("randomness: %w", err)
	}
	_, err = fmt.Fprintf(out, "HANGMAN_COMMITMENT=%s\nHANGMAN_RANDOMNESS=%s\nHANGMAN_WORD_LENGTH=%d\n",
		commitment.Create(secret, randomness), randomness, len(secret))
	return err
}
