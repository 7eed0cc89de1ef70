// internal/httpserver/routes_games.go
//
// HTTP routes for commit-and-reveal hangman games:
//   - POST /games              → initialize (from word+randomness or a commitment)
//   - GET  /games/{id}         → public view of a game
//   - POST /games/{id}/guess   → guesser's signed guess
//   - POST /games/{id}/reveal  → committer's signed reveal; scores the pending guess
//   - GET  /games/{id}/moves   → accepted transitions in order
//   - GET  /games/{id}/events  → WebSocket stream of game updates (events.go)
//
// Keys and signatures travel as base64, field elements and the commitment as
// hex, words as strings over a..z and '_'. The secret word is never returned.

package httpserver

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/authguard"
	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/word"
)

// mountGames registers all /games routes.
func (s *Server) mountGames(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Get("/{id}/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.RequestTimeout)) // bound handler time
			r.Post("/", s.handleCreate)
			r.Get("/{id}", s.handleGet)
			r.Post("/{id}/guess", s.handleGuess)
			r.Post("/{id}/reveal", s.handleReveal)
			r.Get("/{id}/moves", s.handleMoves)
		})
	})
}

// gameView is the public JSON shape of a game.
type gameView struct {
	ID               string    `json:"id"`
	Committer        string    `json:"committer"`
	Guesser          string    `json:"guesser"`
	WordLength       int       `json:"wordLength"`
	GuessLimit       int       `json:"guessLimit"`
	Commitment       string    `json:"commitment"`
	Revealed         string    `json:"revealed"`
	LastGuess        string    `json:"lastGuess,omitempty"`
	IncorrectGuesses int       `json:"incorrectGuesses"`
	Turn             string    `json:"turn"`
	Outcome          string    `json:"outcome"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func viewOf(g *game.Game) gameView {
	return gameView{
		ID:               g.ID,
		Committer:        authguard.EncodeBase64(g.Config.Committer()),
		Guesser:          authguard.EncodeBase64(g.Config.Guesser()),
		WordLength:       g.Config.WordLength(),
		GuessLimit:       g.Config.GuessLimit(),
		Commitment:       g.Config.Commitment().String(),
		Revealed:         g.State.Revealed.String(),
		LastGuess:        charOf(g.State.LastGuess),
		IncorrectGuesses: g.State.IncorrectGuesses,
		Turn:             g.State.Turn.String(),
		Outcome:          g.State.Outcome.String(),
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
}

// charOf renders a symbol as its character; None renders as "".
func charOf(s word.Symbol) string {
	c, err := word.CharFromSymbol(s)
	if err != nil {
		return ""
	}
	return string(c)
}

// ------------------------------ create -------------------------------------

// createReq: either Word (+ optional Randomness) or Commitment + WordLength.
type createReq struct {
	Committer  string `json:"committer"`
	Guesser    string `json:"guesser"`
	GuessLimit int    `json:"guessLimit"`
	Word       string `json:"word"`
	Randomness string `json:"randomness"`
	Commitment string `json:"commitment"`
	WordLength int    `json:"wordLength"`
}

type createRes struct {
	Game gameView `json:"game"`
	// Randomness is echoed only when the server generated it.
	Randomness string `json:"randomness,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	g, generated, err := s.newGame(req)
	if err != nil {
		log.Debug().Err(err).Msg("create rejected")
		writeError(w, err)
		return
	}
	if err := s.store.Create(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		writeError(w, err)
		return
	}
	log.Info().Str("gameId", g.ID).Int("wordLength", g.Config.WordLength()).
		Int("guessLimit", g.Config.GuessLimit()).Msg("game created")

	res := createRes{Game: viewOf(g)}
	if generated != nil {
		res.Randomness = generated.String()
	}
	writeJSON(w, http.StatusCreated, res)
}

// newGame builds a game from a create request. It returns the randomness
// when the server had to generate it.
func (s *Server) newGame(req createReq) (*game.Game, *field.Element, error) {
	committer, err := authguard.ParsePublicKey(req.Committer)
	if err != nil {
		return nil, nil, fmt.Errorf("committer: %w", err)
	}
	guesser, err := authguard.ParsePublicKey(req.Guesser)
	if err != nil {
		return nil, nil, fmt.Errorf("guesser: %w", err)
	}
	limit := req.GuessLimit
	if limit == 0 {
		limit = s.cfg.DefaultGuessLimit
	}

	switch {
	case req.Word != "" && req.Commitment != "":
		return nil, nil, fmt.Errorf("%w: send either word or commitment, not both", errBadRequest)

	case req.Word != "":
		secret, err := word.Parse(strings.ToLower(strings.TrimSpace(req.Word)))
		if err != nil {
			return nil, nil, fmt.Errorf("word: %w", err)
		}
		var generated *field.Element
		var randomness field.Element
		if req.Randomness == "" {
			if randomness, err = commitment.NewRandomness(); err != nil {
				return nil, nil, err
			}
			generated = &randomness
		} else if randomness, err = field.Parse(req.Randomness); err != nil {
			return nil, nil, fmt.Errorf("randomness: %w", err)
		}
		g, err := game.New(committer, guesser, secret, randomness, limit)
		return g, generated, err

	case req.Commitment != "":
		digest, err := commitment.Parse(req.Commitment)
		if err != nil {
			return nil, nil, fmt.Errorf("commitment: %w", err)
		}
		g, err := game.NewCommitted(committer, guesser, digest, req.WordLength, limit)
		return g, nil, err
	}
	return nil, nil, fmt.Errorf("%w: word or commitment is required", errBadRequest)
}

// ------------------------------- read --------------------------------------

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g))
}

type moveView struct {
	Seq              int       `json:"seq"`
	Kind             string    `json:"kind"`
	Char             string    `json:"char"`
	Matched          *bool     `json:"matched,omitempty"`
	IncorrectGuesses int       `json:"incorrectGuesses"`
	Outcome          string    `json:"outcome"`
	At               time.Time `json:"at"`
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	moves, err := s.store.Moves(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]moveView, 0, len(moves))
	for _, mv := range moves {
		v := moveView{
			Seq:              mv.Seq,
			Kind:             string(mv.Kind),
			Char:             charOf(mv.Symbol),
			IncorrectGuesses: mv.IncorrectGuesses,
			Outcome:          mv.Outcome.String(),
			At:               mv.At,
		}
		if mv.Kind == store.MoveReveal {
			matched := mv.Matched
			v.Matched = &matched
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------------- guess -------------------------------------

type guessReq struct {
	Player    string `json:"player"`
	Signature string `json:"signature"`
	Char      string `json:"char"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req guessReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	player, sig, err := parseActor(req.Player, req.Signature)
	if err != nil {
		writeError(w, err)
		return
	}
	guess, err := parseChar(req.Char)
	if err != nil {
		writeError(w, err)
		return
	}

	g, err := s.store.Update(r.Context(), id, func(g *game.Game) (store.Move, error) {
		if err := g.SubmitGuess(player, sig, guess); err != nil {
			return store.Move{}, err
		}
		return store.Move{
			Kind:             store.MoveGuess,
			Symbol:           guess,
			IncorrectGuesses: g.State.IncorrectGuesses,
			Outcome:          g.State.Outcome,
		}, nil
	})
	if err != nil {
		log.Debug().Err(err).Str("gameId", id).Msg("guess rejected")
		writeError(w, err)
		return
	}
	log.Info().Str("gameId", id).Str("char", req.Char).Msg("guess accepted")
	view := viewOf(g)
	s.hub.publish(id, view)
	writeJSON(w, http.StatusOK, view)
}

// parseChar accepts exactly one character. Blanks parse here and are
// rejected by the game after the signature check.
func parseChar(s string) (word.Symbol, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if utf8.RuneCountInString(s) != 1 {
		return word.None, fmt.Errorf("%w: char must be a single letter", word.ErrInvalidSymbol)
	}
	c, _ := utf8.DecodeRuneInString(s)
	return word.SymbolFromChar(c)
}

// ------------------------------- reveal ------------------------------------

type revealReq struct {
	Player     string `json:"player"`
	Signature  string `json:"signature"`
	Word       string `json:"word"`
	Randomness string `json:"randomness"`
}

type revealRes struct {
	Matched bool     `json:"matched"`
	Outcome string   `json:"outcome"`
	Game    gameView `json:"game"`
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req revealReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	player, sig, err := parseActor(req.Player, req.Signature)
	if err != nil {
		writeError(w, err)
		return
	}
	secret, err := word.Parse(strings.ToLower(strings.TrimSpace(req.Word)))
	if err != nil {
		writeError(w, fmt.Errorf("word: %w", err))
		return
	}
	randomness, err := field.Parse(req.Randomness)
	if err != nil {
		writeError(w, fmt.Errorf("randomness: %w", err))
		return
	}

	var res game.Result
	g, err := s.store.Update(r.Context(), id, func(g *game.Game) (store.Move, error) {
		guess := g.State.LastGuess
		out, err := g.RevealAndScore(player, sig, secret, randomness)
		if err != nil {
			return store.Move{}, err
		}
		res = out
		return store.Move{
			Kind:             store.MoveReveal,
			Symbol:           guess,
			Matched:          out.Matched,
			IncorrectGuesses: g.State.IncorrectGuesses,
			Outcome:          out.Outcome,
		}, nil
	})
	if err != nil {
		log.Debug().Err(err).Str("gameId", id).Msg("reveal rejected")
		writeError(w, err)
		return
	}
	ev := log.Info().Str("gameId", id).Bool("matched", res.Matched).Str("outcome", res.Outcome.String())
	if res.Outcome.Finished() {
		ev.Msg("game finished")
	} else {
		ev.Msg("reveal accepted")
	}
	view := viewOf(g)
	s.hub.publish(id, view)
	writeJSON(w, http.StatusOK, revealRes{Matched: res.Matched, Outcome: res.Outcome.String(), Game: view})
}

// ------------------------------- util --------------------------------------

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: bad_json: %v", errBadRequest, err)
	}
	return nil
}

// parseActor decodes the acting player's key and signature. An undecodable
// signature becomes nil so the game rejects it in its usual check order.
func parseActor(player, signature string) (ed25519.PublicKey, []byte, error) {
	key, err := authguard.ParsePublicKey(player)
	if err != nil {
		return nil, nil, fmt.Errorf("player: %w", err)
	}
	sig, _ := authguard.DecodeBase64(signature)
	return key, sig, nil
}
