package referee

import (
	"errors"
	"sync"
	"time"

	"github.com/corentings/chess/v2"

	"chessboard/internal/storage"
)

var (
	ErrNotFound    = errors.New("game not found")
	ErrIllegalMove = errors.New("illegal move")
	ErrNoPiece     = errors.New("no piece of the side to move on that square")
)

// Hub manages all active games of the reference oracle.
type Hub struct {
	Mu    sync.Mutex
	Games map[string]*Game
	Store *storage.Store

	idle time.Duration
	done chan struct{}
}

// Game is a single game and its rules state.
type Game struct {
	Mu       sync.Mutex
	ID       string
	LastSeen time.Time

	g     *chess.Game
	store *storage.Store
}

// Outcome strings recorded for finished games.
const (
	StatusCheckmate = "checkmate"
	StatusStalemate = "stalemate"
)
