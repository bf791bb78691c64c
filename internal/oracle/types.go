package oracle

import (
	"unicode/utf8"

	"chessboard/internal/square"
)

// Side is the colour to move as reported by the oracle.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// Unicode chess symbols used as piece codes on the wire.
const (
	WhiteKing   = '♔'
	WhiteQueen  = '♕'
	WhiteRook   = '♖'
	WhiteBishop = '♗'
	WhiteKnight = '♘'
	WhitePawn   = '♙'
	BlackKing   = '♚'
	BlackQueen  = '♛'
	BlackRook   = '♜'
	BlackBishop = '♝'
	BlackKnight = '♞'
	BlackPawn   = '♟'
)

// GlyphSide returns the side owning a piece glyph, or "" for an empty square
// or an unknown code.
func GlyphSide(glyph string) Side {
	r, _ := utf8.DecodeRuneInString(glyph)
	switch {
	case r >= WhiteKing && r <= WhitePawn:
		return White
	case r >= BlackKing && r <= BlackPawn:
		return Black
	}
	return ""
}

// Snapshot is the oracle's authoritative view of a game.
type Snapshot struct {
	GameID      string       `json:"gameID"`
	Positions   [8][8]string `json:"positions"`
	CurrentTurn Side         `json:"currentTurn"`
	Check       square.Label `json:"check,omitempty"`
	Checkmate   bool         `json:"checkmate"`
	Stalemate   bool         `json:"stalemate"`
}

// PieceAt returns the glyph on l, or "" when the square is empty.
func (s Snapshot) PieceAt(l square.Label) string {
	c := square.ToCoordinate(l)
	return s.Positions[c.Y][c.X]
}

// Occupied lists every square holding a piece, a8 first.
func (s Snapshot) Occupied() []square.Label {
	var out []square.Label
	for _, l := range square.All() {
		if s.PieceAt(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// OwnedByMover reports whether l holds a piece of the side to move.
func (s Snapshot) OwnedByMover(l square.Label) bool {
	side := GlyphSide(s.PieceAt(l))
	return side != "" && side == s.CurrentTurn
}

// MoveRequest is the body of a quiet move submission.
type MoveRequest struct {
	MoveTo       square.Label  `json:"moveTo"`
	PromoteTo    *string       `json:"promoteTo"`
	CastleTarget *square.Label `json:"castleTarget"`
}

// CaptureRequest is the body of a capture submission. PromoteTo is only
// meaningful when a pawn captures onto the last rank.
type CaptureRequest struct {
	MoveTo    square.Label `json:"moveTo"`
	KillPos   square.Label `json:"killPos"`
	PromoteTo *string      `json:"promoteTo,omitempty"`
}

// MovesResponse lists encoded legal destinations for one square.
type MovesResponse struct {
	Moves []string `json:"moves"`
}

// StatusResponse is the liveness payload.
type StatusResponse struct {
	Status string `json:"status"`
}

// StatusSuccess is the liveness marker of a healthy oracle.
const StatusSuccess = "success"
