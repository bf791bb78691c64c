package referee

import (
	"github.com/corentings/chess/v2"

	"chessboard/internal/square"
)

var (
	straight = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	jumps    = [][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// attacked reports whether any piece of color by attacks at. Pins are
// ignored: a pinned piece still gives check.
func attacked(b *chess.Board, at square.Label, by chess.Color) bool {
	pieceAt := func(dx, dy int) chess.Piece {
		l, ok := at.Offset(dx, dy)
		if !ok {
			return chess.NoPiece
		}
		return b.Piece(square.ToChess(l))
	}
	is := func(p chess.Piece, types ...chess.PieceType) bool {
		if p == chess.NoPiece || p.Color() != by {
			return false
		}
		for _, t := range types {
			if p.Type() == t {
				return true
			}
		}
		return false
	}

	slide := func(dirs [][2]int, types ...chess.PieceType) bool {
		for _, d := range dirs {
			for n := 1; n < 8; n++ {
				l, ok := at.Offset(d[0]*n, d[1]*n)
				if !ok {
					break
				}
				p := b.Piece(square.ToChess(l))
				if p == chess.NoPiece {
					continue
				}
				if is(p, types...) {
					return true
				}
				break
			}
		}
		return false
	}
	if slide(straight, chess.Rook, chess.Queen) || slide(diagonal, chess.Bishop, chess.Queen) {
		return true
	}
	for _, d := range jumps {
		if is(pieceAt(d[0], d[1]), chess.Knight) {
			return true
		}
	}
	for _, d := range append(append([][2]int{}, straight...), diagonal...) {
		if is(pieceAt(d[0], d[1]), chess.King) {
			return true
		}
	}
	// Row 0 is rank 8, so white pawns attack from the row below.
	dy := 1
	if by == chess.Black {
		dy = -1
	}
	return is(pieceAt(-1, dy), chess.Pawn) || is(pieceAt(1, dy), chess.Pawn)
}
