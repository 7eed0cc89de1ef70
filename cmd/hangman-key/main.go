// Package main provides the player-side key utility.
//
// With no flags it emits a fresh ed25519 keypair; -guess, -reveal and
// -commit sign moves and build commitments offline.
package main

import (
	"flag"
	"os"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/tools/playerkey"
)

func main() {
	cfg, err := playerkey.ParseConfig(flag.CommandLine, os.Args[1:], os.Getenv("HANGMAN_PRIVATE_KEY"))
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := playerkey.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("hangman-key: %v", err)
	}
}
