package referee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corentings/chess/v2"
	"github.com/google/uuid"

	"chessboard/internal/logging"
	"chessboard/internal/movecodec"
	"chessboard/internal/oracle"
	"chessboard/internal/square"
	"chessboard/internal/storage"
)

var glyphs = map[chess.Color]map[chess.PieceType]rune{
	chess.White: {
		chess.King: oracle.WhiteKing, chess.Queen: oracle.WhiteQueen, chess.Rook: oracle.WhiteRook,
		chess.Bishop: oracle.WhiteBishop, chess.Knight: oracle.WhiteKnight, chess.Pawn: oracle.WhitePawn,
	},
	chess.Black: {
		chess.King: oracle.BlackKing, chess.Queen: oracle.BlackQueen, chess.Rook: oracle.BlackRook,
		chess.Bishop: oracle.BlackBishop, chess.Knight: oracle.BlackKnight, chess.Pawn: oracle.BlackPawn,
	},
}

// Glyph returns the wire code of a piece, "" for an empty square.
func Glyph(p chess.Piece) string {
	if p == chess.NoPiece {
		return ""
	}
	return string(glyphs[p.Color()][p.Type()])
}

func side(c chess.Color) oracle.Side {
	if c == chess.Black {
		return oracle.Black
	}
	return oracle.White
}

func newGame(id, fen string, store *storage.Store) (*Game, error) {
	g := chess.NewGame()
	if fen != "" {
		opt, err := chess.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("bad fen: %w", err)
		}
		g = chess.NewGame(opt)
	}
	return &Game{ID: id, LastSeen: time.Now(), g: g, store: store}, nil
}

// Touch updates the last seen timestamp for a game.
func (g *Game) Touch() {
	g.Mu.Lock()
	g.LastSeen = time.Now()
	g.Mu.Unlock()
}

// FEN returns the current position.
func (g *Game) FEN() string {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.g.Position().String()
}

// Snapshot returns the board as the oracle reports it.
func (g *Game) Snapshot() oracle.Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() oracle.Snapshot {
	pos := g.g.Position()
	board := pos.Board()

	snap := oracle.Snapshot{GameID: g.ID, CurrentTurn: side(pos.Turn())}
	for _, l := range square.All() {
		c := square.ToCoordinate(l)
		snap.Positions[c.Y][c.X] = Glyph(board.Piece(square.ToChess(l)))
	}
	if sq, ok := findKing(board, pos.Turn()); ok {
		if king := square.FromChess(sq); attacked(board, king, pos.Turn().Other()) {
			snap.Check = king
		}
	}
	switch pos.Status() {
	case chess.Checkmate:
		snap.Checkmate = true
	case chess.Stalemate:
		snap.Stalemate = true
	}
	return snap
}

func findKing(b *chess.Board, color chess.Color) (chess.Square, bool) {
	for sq := chess.Square(0); sq <= chess.H8; sq++ {
		p := b.Piece(sq)
		if p != chess.NoPiece && p.Type() == chess.King && p.Color() == color {
			return sq, true
		}
	}
	return chess.NoSquare, false
}

// candidate is a legal move from one square, described for the wire.
type candidate struct {
	uci  string
	desc movecodec.Descriptor
}

// candidatesLocked lists the legal moves of the piece on from, one per
// destination. Promotions are listed once; the piece is chosen on submission.
func (g *Game) candidatesLocked(from square.Label) []candidate {
	pos := g.g.Position()
	fromSq := square.ToChess(from)
	piece := pos.Board().Piece(fromSq)
	if piece == chess.NoPiece || piece.Color() != pos.Turn() {
		return nil
	}

	var out []candidate
	seen := make(map[square.Label]bool)
	for _, m := range pos.ValidMoves() {
		if m.S1() != fromSq {
			continue
		}
		to := square.FromChess(m.S2())
		if seen[to] {
			continue
		}
		seen[to] = true

		d := movecodec.Descriptor{Destination: to}
		if piece.Type() == chess.Pawn && to.File() != from.File() {
			d.IsPawnDiagonal = true
		}
		if m.Promo() != chess.NoPieceType {
			d.IsPromotion = true
		}
		switch {
		case m.HasTag(chess.EnPassant):
			d.IsCapture, d.IsThreat, d.IsEnPassant = true, true, true
			d.CaptureTarget = square.ToLabel(square.Coordinate{X: to.File(), Y: square.ToCoordinate(from).Y})
		case m.HasTag(chess.Capture):
			d.IsCapture, d.IsThreat = true, true
			d.CaptureTarget = to
		case m.HasTag(chess.KingSideCastle):
			d.IsCastle = true
			d.CastleRookSquare = square.ToLabel(square.Coordinate{X: 7, Y: square.ToCoordinate(from).Y})
		case m.HasTag(chess.QueenSideCastle):
			d.IsCastle = true
			d.CastleRookSquare = square.ToLabel(square.Coordinate{X: 0, Y: square.ToCoordinate(from).Y})
		}
		out = append(out, candidate{uci: string(from) + string(to), desc: d})
	}
	return out
}

// Destinations returns the encoded destinations of the piece on from. Pawn
// diagonals that are not legal captures are listed as well, flagged so
// clients can tell them apart.
func (g *Game) Destinations(from square.Label) []string {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	cands := g.candidatesLocked(from)
	out := make([]string, 0, len(cands)+2)
	seen := make(map[square.Label]bool)
	for _, c := range cands {
		seen[c.desc.Destination] = true
		out = append(out, movecodec.Encode(c.desc))
	}

	pos := g.g.Position()
	piece := pos.Board().Piece(square.ToChess(from))
	if piece == chess.NoPiece || piece.Type() != chess.Pawn || piece.Color() != pos.Turn() {
		return out
	}
	forward := -1
	if piece.Color() == chess.Black {
		forward = 1
	}
	for _, dx := range []int{-1, 1} {
		to, ok := from.Offset(dx, forward)
		if !ok || seen[to] {
			continue
		}
		d := movecodec.Descriptor{Destination: to, IsPawnDiagonal: true}
		if p := pos.Board().Piece(square.ToChess(to)); p != chess.NoPiece && p.Color() == piece.Color() {
			d.IsFriendlyOccupied = true
		}
		out = append(out, movecodec.Encode(d))
	}
	return out
}

func (g *Game) findLocked(from, to square.Label) (candidate, error) {
	cands := g.candidatesLocked(from)
	for _, c := range cands {
		if c.desc.Destination == to {
			return c, nil
		}
	}
	if len(cands) == 0 {
		return candidate{}, fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	return candidate{}, fmt.Errorf("%w: %s-%s", ErrIllegalMove, from, to)
}

// promotionSuffix maps a requested promotion piece to its UCI letter.
// Anything unrecognised promotes to a queen.
func promotionSuffix(piece *string) string {
	if piece == nil {
		return "q"
	}
	switch strings.ToLower(strings.TrimSpace(*piece)) {
	case "rook", "r":
		return "r"
	case "bishop", "b":
		return "b"
	case "knight", "n":
		return "n"
	}
	return "q"
}

// Move plays a non-capturing move, castling included.
func (g *Game) Move(ctx context.Context, from square.Label, req oracle.MoveRequest) (oracle.Snapshot, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	c, err := g.findLocked(from, req.MoveTo)
	if err != nil {
		return oracle.Snapshot{}, err
	}
	if c.desc.IsCapture {
		return oracle.Snapshot{}, fmt.Errorf("%w: %s-%s captures, submit it as a capture", ErrIllegalMove, from, req.MoveTo)
	}
	if req.CastleTarget != nil && (!c.desc.IsCastle || *req.CastleTarget != c.desc.CastleRookSquare) {
		return oracle.Snapshot{}, fmt.Errorf("%w: no castle with rook %s", ErrIllegalMove, *req.CastleTarget)
	}
	uci := c.uci
	if c.desc.IsPromotion {
		uci += promotionSuffix(req.PromoteTo)
	}
	return g.playLocked(ctx, uci, c.desc)
}

// Capture plays a capture. target must be the square of the captured piece,
// which differs from the destination only for en passant.
func (g *Game) Capture(ctx context.Context, from square.Label, req oracle.CaptureRequest) (oracle.Snapshot, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	c, err := g.findLocked(from, req.MoveTo)
	if err != nil {
		return oracle.Snapshot{}, err
	}
	if !c.desc.IsCapture || c.desc.CaptureTarget != req.KillPos {
		return oracle.Snapshot{}, fmt.Errorf("%w: %s-%s does not capture on %s", ErrIllegalMove, from, req.MoveTo, req.KillPos)
	}
	uci := c.uci
	if c.desc.IsPromotion {
		uci += promotionSuffix(req.PromoteTo)
	}
	return g.playLocked(ctx, uci, c.desc)
}

func (g *Game) playLocked(ctx context.Context, uci string, d movecodec.Descriptor) (oracle.Snapshot, error) {
	pos := g.g.Position()
	mover := side(pos.Turn())
	mv, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return oracle.Snapshot{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	if err := g.g.Move(mv, nil); err != nil {
		return oracle.Snapshot{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	g.LastSeen = time.Now()
	snap := g.snapshotLocked()
	logging.Debugf("game %s: %s %s", g.ID, mover, uci)

	g.persistLocked(ctx, uci, d, snap)
	return snap, nil
}

func (g *Game) persistLocked(ctx context.Context, uci string, d movecodec.Descriptor, snap oracle.Snapshot) {
	if g.store == nil {
		return
	}
	id, err := uuid.Parse(g.ID)
	if err != nil {
		return
	}
	kind := "move"
	switch {
	case d.IsCapture:
		kind = "capture"
	case d.IsCastle:
		kind = "castle"
	}
	fen := g.g.Position().String()
	rec := storage.Move{
		Number:  len(g.g.Moves()),
		From:    uci[:2],
		To:      uci[2:4],
		Kind:    kind,
		Encoded: movecodec.Encode(d),
		FEN:     fen,
	}
	if err := g.store.RecordMove(ctx, id, rec); err != nil {
		logging.Errorf("record move %s in %s: %v", uci, g.ID, err)
	}
	turn := string(snap.CurrentTurn)
	if err := g.store.SaveGameState(ctx, id, storage.GameStateUpdate{FEN: &fen, Turn: &turn, LastSeen: &g.LastSeen}); err != nil {
		logging.Errorf("save game %s: %v", g.ID, err)
	}
	status := ""
	switch {
	case snap.Checkmate:
		status = StatusCheckmate
	case snap.Stalemate:
		status = StatusStalemate
	}
	if status != "" {
		if err := g.store.CompleteGame(ctx, id, status, time.Now()); err != nil {
			logging.Errorf("complete game %s: %v", g.ID, err)
		}
	}
}
