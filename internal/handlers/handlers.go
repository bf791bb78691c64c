package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chessboard/internal/logging"
	"chessboard/internal/oracle"
	"chessboard/internal/referee"
	"chessboard/internal/square"
)

// Handler serves the oracle contract over HTTP.
type Handler struct {
	Hub *referee.Hub
}

// NewHandler creates a new handler instance
func NewHandler(hub *referee.Hub) *Handler {
	return &Handler{Hub: hub}
}

// Routes registers every oracle endpoint on a fresh mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleStatus)
	mux.HandleFunc("GET /games", h.HandleGames)
	mux.HandleFunc("GET /games/new", h.HandleNew)
	mux.HandleFunc("GET /games/{id}", h.HandleGame)
	mux.HandleFunc("GET /games/{id}/moves/{square}", h.HandleMoves)
	mux.HandleFunc("POST /games/{id}/moves/{square}", h.HandleSubmit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return WithCORS(mux)
}

// HandleStatus answers the liveness probe.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, oracle.StatusResponse{Status: oracle.StatusSuccess})
}

// HandleGames reports live and persisted game counts.
func (h *Handler) HandleGames(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Hub.Store.FetchStats(r.Context())
	if err != nil {
		logging.Errorf("fetch stats: %v", err)
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": oracle.StatusSuccess,
		"games":  h.Hub.Len(),
		"stats":  stats,
	})
}

// HandleNew starts a game, optionally from the position in the fen query.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	g, err := h.Hub.New(r.Context(), strings.TrimSpace(r.URL.Query().Get("fen")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err)
		return
	}
	WriteJSON(w, http.StatusOK, g.Snapshot())
}

// HandleGame returns the current snapshot of a game.
func (h *Handler) HandleGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.Hub.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, statusFor(err), err)
		return
	}
	WriteJSON(w, http.StatusOK, g.Snapshot())
}

// HandleMoves lists encoded destinations for the piece on the given square.
func (h *Handler) HandleMoves(w http.ResponseWriter, r *http.Request) {
	g, from, ok := h.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, oracle.MovesResponse{Moves: g.Destinations(from)})
}

// submitRequest is the union of the move and capture bodies.
type submitRequest struct {
	MoveTo       string  `json:"moveTo"`
	PromoteTo    *string `json:"promoteTo"`
	CastleTarget *string `json:"castleTarget"`
	KillPos      string  `json:"killPos"`
}

// HandleSubmit plays a move or, when killPos is present, a capture.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	g, from, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}
	to, err := square.Parse(strings.ToLower(strings.TrimSpace(body.MoveTo)))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err)
		return
	}

	var snap oracle.Snapshot
	if body.KillPos != "" {
		target, err := square.Parse(body.KillPos)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err)
			return
		}
		snap, err = g.Capture(r.Context(), from, oracle.CaptureRequest{MoveTo: to, KillPos: target, PromoteTo: body.PromoteTo})
		if err != nil {
			WriteError(w, statusFor(err), err)
			return
		}
	} else {
		req := oracle.MoveRequest{MoveTo: to, PromoteTo: body.PromoteTo}
		if body.CastleTarget != nil {
			rook, err := square.Parse(*body.CastleTarget)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err)
				return
			}
			req.CastleTarget = &rook
		}
		snap, err = g.Move(r.Context(), from, req)
		if err != nil {
			WriteError(w, statusFor(err), err)
			return
		}
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*referee.Game, square.Label, bool) {
	from, err := square.Parse(strings.ToLower(r.PathValue("square")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err)
		return nil, "", false
	}
	g, err := h.Hub.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, statusFor(err), err)
		return nil, "", false
	}
	return g, from, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, referee.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, referee.ErrIllegalMove), errors.Is(err, referee.ErrNoPiece), errors.Is(err, square.ErrBadLabel):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
