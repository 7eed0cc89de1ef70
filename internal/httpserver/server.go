// internal/httpserver/server.go
//
// HTTP server wiring for the hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints mounted under /games (see routes_games.go).
//   - Live game updates over WebSocket (see events.go).
//   - Mapping domain errors onto stable JSON error codes.
//
// Notes:
//   - There are no sessions or cookies: every state-changing request carries
//     the player's public key and a signature over the move.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/authguard"
	"github.com/robalobadob/hangman/internal/commitment"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/field"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/word"
)

// Server bundles router, game store, configuration and the watcher hub.
type Server struct {
	r        *chi.Mux
	store    store.Store
	cfg      config.Config
	hub      *hub
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg config.Config) *Server {
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg, hub: newHub()}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	// --- middleware ---
	// Handler timeouts live in mountGames; the events socket has none.
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hangman","endpoints":["/health","POST /games","GET /games/{id}","POST /games/{id}/guess","POST /games/{id}/reveal","GET /games/{id}/moves","GET /games/{id}/events"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountGames(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Detail: r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single configured origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- errors ------------------------------------

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// errorCodes is checked in order; game errors come before the word errors
// they may wrap.
var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{store.ErrNotFound, "not_found", http.StatusNotFound},
	{store.ErrExists, "conflict", http.StatusConflict},
	{game.ErrGameFinished, "game_finished", http.StatusConflict},
	{game.ErrUnauthorizedPlayer, "unauthorized_player", http.StatusForbidden},
	{game.ErrWrongTurn, "wrong_turn", http.StatusConflict},
	{game.ErrInvalidSignature, "invalid_signature", http.StatusUnauthorized},
	{game.ErrCommitmentMismatch, "commitment_mismatch", http.StatusUnprocessableEntity},
	{game.ErrInvalidConfig, "invalid_config", http.StatusBadRequest},
	{word.ErrLengthMismatch, "length_mismatch", http.StatusUnprocessableEntity},
	{word.ErrInvalidSymbol, "invalid_symbol", http.StatusBadRequest},
	{authguard.ErrInvalidKey, "invalid_key", http.StatusBadRequest},
	{authguard.ErrInvalidEncoding, "bad_request", http.StatusBadRequest},
	{field.ErrInvalidElement, "bad_request", http.StatusBadRequest},
	{commitment.ErrInvalidDigest, "bad_request", http.StatusBadRequest},
	{errBadRequest, "bad_request", http.StatusBadRequest},
}

var errBadRequest = errors.New("bad request")

// writeError maps err onto a JSON error body. Unknown errors are 500s and
// their text is not echoed.
func writeError(w http.ResponseWriter, err error) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			writeJSON(w, c.status, errorBody{Error: c.code, Detail: err.Error()})
			return
		}
	}
	log.Error().Err(err).Msg("unhandled error")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
