package referee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chessboard/internal/logging"
	"chessboard/internal/storage"
)

// NewHub creates a game hub. Games untouched for longer than idle are evicted
// by a background sweep every five minutes until Close is called.
func NewHub(store *storage.Store, idle time.Duration) *Hub {
	h := &Hub{
		Games: make(map[string]*Game),
		Store: store,
		idle:  idle,
		done:  make(chan struct{}),
	}
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-h.done:
				return
			case now := <-t.C:
				if n := h.Sweep(now); n > 0 {
					logging.Debugf("evicted %d idle games", n)
				}
			}
		}
	}()
	return h
}

// Close stops the background sweep.
func (h *Hub) Close() {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// New starts a game from the standard position, or from fen when it is set.
func (h *Hub) New(ctx context.Context, fen string) (*Game, error) {
	id := uuid.NewString()
	g, err := newGame(id, fen, h.Store)
	if err != nil {
		return nil, err
	}
	h.Mu.Lock()
	h.Games[id] = g
	h.Mu.Unlock()

	snap := g.Snapshot()
	if err := h.Store.CreateGame(ctx, uuid.MustParse(id), g.FEN(), string(snap.CurrentTurn), g.LastSeen); err != nil {
		logging.Errorf("persist game %s: %v", id, err)
	}
	logging.Debugf("new game %s", id)
	return g, nil
}

// Get returns a live game, reloading it from the store if it was evicted.
func (h *Hub) Get(ctx context.Context, id string) (*Game, error) {
	h.Mu.Lock()
	g, ok := h.Games[id]
	h.Mu.Unlock()
	if ok {
		g.Touch()
		return g, nil
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	row, err := h.Store.LoadGame(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	g, err = newGame(id, row.FEN, h.Store)
	if err != nil {
		return nil, err
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()
	if live, ok := h.Games[id]; ok {
		return live, nil
	}
	h.Games[id] = g
	logging.Debugf("restored game %s from store", id)
	return g, nil
}

// Len returns the number of live games.
func (h *Hub) Len() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.Games)
}

// Sweep evicts games idle since before now minus the idle window and returns
// how many were removed.
func (h *Hub) Sweep(now time.Time) int {
	var evicted []string
	h.Mu.Lock()
	for id, g := range h.Games {
		g.Mu.Lock()
		idle := now.Sub(g.LastSeen) > h.idle
		g.Mu.Unlock()
		if idle {
			delete(h.Games, id)
			evicted = append(evicted, id)
		}
	}
	h.Mu.Unlock()

	for _, id := range evicted {
		if uid, err := uuid.Parse(id); err == nil {
			if err := h.Store.ForgetGame(context.Background(), uid, now); err != nil {
				logging.Errorf("forget game %s: %v", id, err)
			}
		}
	}
	return len(evicted)
}
