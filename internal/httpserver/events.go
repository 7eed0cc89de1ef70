// internal/httpserver/events.go
//
// Live game updates over WebSocket: GET /games/{id}/events.
// A watcher first receives the current game, then one message per accepted
// guess or reveal. The socket is closed by the server once the game ends.
// Watchers are read-only: moves still go through the signed POST routes.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	watcherBuf = 16
)

// gameEvent is the only message sent to watchers.
type gameEvent struct {
	Type string   `json:"type"`
	Game gameView `json:"game"`
}

type watcher struct {
	send chan gameView
}

// hub fans game updates out to the watchers of each game.
type hub struct {
	mu sync.Mutex
	// watchers by game ID
	games map[string]map[*watcher]struct{}
	// UpdatedAt of the last view published per watched game
	last map[string]time.Time
}

func newHub() *hub {
	return &hub{
		games: make(map[string]map[*watcher]struct{}),
		last:  make(map[string]time.Time),
	}
}

func (h *hub) subscribe(id string) *watcher {
	w := &watcher{send: make(chan gameView, watcherBuf)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[id] == nil {
		h.games[id] = make(map[*watcher]struct{})
	}
	h.games[id][w] = struct{}{}
	return w
}

// unsubscribe removes w and closes its channel; safe to call twice.
func (h *hub) unsubscribe(id string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(id, w)
}

func (h *hub) drop(id string, w *watcher) {
	ws, ok := h.games[id]
	if !ok {
		return
	}
	if _, ok := ws[w]; !ok {
		return
	}
	delete(ws, w)
	close(w.send)
	if len(ws) == 0 {
		delete(h.games, id)
		delete(h.last, id)
	}
}

// publish never blocks: a watcher whose buffer is full is dropped.
// Views older than the last one published for the game are discarded, so
// handlers racing after commit cannot reorder a game's history.
func (h *hub) publish(id string, v gameView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.games[id]) == 0 {
		return
	}
	if v.UpdatedAt.Before(h.last[id]) {
		return
	}
	h.last[id] = v.UpdatedAt
	for w := range h.games[id] {
		select {
		case w.send <- v:
		default:
			log.Warn().Str("gameId", id).Msg("dropping slow watcher")
			h.drop(id, w)
		}
	}
}

// watchers reports how many sockets follow id.
func (h *hub) watchers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.games[id])
}

// checkOrigin admits non-browser clients (no Origin) and the configured origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.ClientOrigin
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("gameId", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	sub := s.hub.subscribe(id)
	defer s.hub.unsubscribe(id, sub)

	// Snapshot after subscribing so no accepted move falls in between.
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		return
	}
	if !s.writeEvent(conn, viewOf(g)) {
		return
	}

	// Reads only detect the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case v, ok := <-sub.send:
			if !ok || !s.writeEvent(conn, v) {
				return
			}
		case <-done:
			return
		}
	}
}

// writeEvent sends v and reports whether the socket should stay open.
func (s *Server) writeEvent(conn *websocket.Conn, v gameView) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(gameEvent{Type: "game", Game: v}); err != nil {
		return false
	}
	if v.Outcome == "ongoing" {
		return true
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, v.Outcome),
		time.Now().Add(writeWait))
	return false
}
