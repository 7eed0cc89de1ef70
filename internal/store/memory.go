// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for ephemeral sessions, development and tests.
//
// Characteristics:
//   - Games keyed by ID in a map; callers only ever see clones.
//   - Concurrency-safe via RWMutex; Update holds the write lock for the whole
//     read-modify-write so transitions never interleave.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

type memoryEntry struct {
	game  *game.Game
	moves []Move
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex            // guards games map
	games map[string]*memoryEntry // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*memoryEntry)}
}

func (m *memory) Create(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return ErrExists
	}
	m.games[g.ID] = &memoryEntry{game: g.Clone()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.game.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn TransitionFunc) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := e.game.Clone()
	mv, err := fn(next)
	if err != nil {
		return nil, err
	}
	mv.Seq = len(e.moves) + 1
	mv.At = time.Now().UTC()

	e.game = next
	e.moves = append(e.moves, mv)
	return next.Clone(), nil
}

func (m *memory) Moves(ctx context.Context, id string) ([]Move, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Move(nil), e.moves...), nil
}
