package referee

import (
	"context"
	"errors"
	"testing"
	"time"

	"chessboard/internal/oracle"
	"chessboard/internal/square"
)

func newTestGame(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := newGame("test", fen, nil)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func move(t *testing.T, g *Game, from, to square.Label) oracle.Snapshot {
	t.Helper()
	snap, err := g.Move(context.Background(), from, oracle.MoveRequest{MoveTo: to})
	if err != nil {
		t.Fatalf("move %s-%s: %v", from, to, err)
	}
	return snap
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestMoveValid(t *testing.T) {
	g := newTestGame(t, "")
	snap := move(t, g, "e2", "e4")
	if snap.PieceAt("e4") != "♙" || snap.PieceAt("e2") != "" {
		t.Fatalf("pawn did not move: %v", snap.Positions)
	}
	if snap.CurrentTurn != oracle.Black {
		t.Fatalf("expected black to move, got %s", snap.CurrentTurn)
	}
}

func TestMoveInvalid(t *testing.T) {
	g := newTestGame(t, "")
	if _, err := g.Move(context.Background(), "e2", oracle.MoveRequest{MoveTo: "e5"}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := g.Move(context.Background(), "e7", oracle.MoveRequest{MoveTo: "e5"}); !errors.Is(err, ErrNoPiece) {
		t.Fatalf("expected ErrNoPiece for the wrong side, got %v", err)
	}
}

func TestDestinationsOpening(t *testing.T) {
	g := newTestGame(t, "")
	got := g.Destinations("e2")
	for _, want := range []string{"e3", "e4", "d3:/", "f3:/"} {
		if !contains(got, want) {
			t.Fatalf("expected %q in %v", want, got)
		}
	}
	got = g.Destinations("b1")
	if len(got) != 2 || !contains(got, "a3") || !contains(got, "c3") {
		t.Fatalf("unexpected knight moves %v", got)
	}
	if got := g.Destinations("e4"); len(got) != 0 {
		t.Fatalf("empty square should have no moves, got %v", got)
	}
}

func TestDestinationsFriendlyDiagonal(t *testing.T) {
	g := newTestGame(t, "4k3/8/8/8/8/3N4/4P3/4K3 w - - 0 1")
	got := g.Destinations("e2")
	if !contains(got, "d3:/@") {
		t.Fatalf("expected friendly diagonal in %v", got)
	}
}

func TestEnPassant(t *testing.T) {
	g := newTestGame(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	if got := g.Destinations("e5"); !contains(got, "d6:/#!d5^") {
		t.Fatalf("expected en passant entry in %v", got)
	}
	if _, err := g.Capture(context.Background(), "e5", oracle.CaptureRequest{MoveTo: "d6", KillPos: "d6"}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected wrong capture target to be rejected, got %v", err)
	}
	snap, err := g.Capture(context.Background(), "e5", oracle.CaptureRequest{MoveTo: "d6", KillPos: "d5"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snap.PieceAt("d6") != "♙" || snap.PieceAt("d5") != "" || snap.PieceAt("e5") != "" {
		t.Fatalf("unexpected board after en passant")
	}
}

func TestCastling(t *testing.T) {
	g := newTestGame(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	got := g.Destinations("e1")
	if !contains(got, "g1:$h1") || !contains(got, "c1:$a1") {
		t.Fatalf("expected both castles in %v", got)
	}
	bad := square.Label("a1")
	if _, err := g.Move(context.Background(), "e1", oracle.MoveRequest{MoveTo: "g1", CastleTarget: &bad}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected mismatched rook to be rejected, got %v", err)
	}
	rook := square.Label("h1")
	snap, err := g.Move(context.Background(), "e1", oracle.MoveRequest{MoveTo: "g1", CastleTarget: &rook})
	if err != nil {
		t.Fatalf("castle: %v", err)
	}
	if snap.PieceAt("g1") != "♔" || snap.PieceAt("f1") != "♖" || snap.PieceAt("h1") != "" {
		t.Fatalf("unexpected board after castling")
	}
}

func TestCaptureRequiresCaptureEndpoint(t *testing.T) {
	g := newTestGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	if _, err := g.Move(context.Background(), "e4", oracle.MoveRequest{MoveTo: "d5"}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected capture through move endpoint to be rejected, got %v", err)
	}
	snap, err := g.Capture(context.Background(), "e4", oracle.CaptureRequest{MoveTo: "d5", KillPos: "d5"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(snap.Occupied()) != 3 {
		t.Fatalf("expected three pieces left, got %v", snap.Occupied())
	}
}

func TestPromotion(t *testing.T) {
	g := newTestGame(t, "8/P7/8/8/8/8/8/k6K w - - 0 1")
	if got := g.Destinations("a7"); !contains(got, "a8:*") {
		t.Fatalf("expected promotion entry in %v", got)
	}
	knight := "knight"
	snap, err := g.Move(context.Background(), "a7", oracle.MoveRequest{MoveTo: "a8", PromoteTo: &knight})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if snap.PieceAt("a8") != "♘" {
		t.Fatalf("expected knight on a8, got %q", snap.PieceAt("a8"))
	}
}

func TestCheckmate(t *testing.T) {
	g := newTestGame(t, "")
	move(t, g, "f2", "f3")
	move(t, g, "e7", "e5")
	move(t, g, "g2", "g4")
	snap := move(t, g, "d8", "h4")
	if snap.Check != "e1" {
		t.Fatalf("expected white king in check on e1, got %q", snap.Check)
	}
	if !snap.Checkmate || snap.Stalemate {
		t.Fatalf("expected checkmate, got %+v", snap)
	}
}

func TestHubSweep(t *testing.T) {
	h := NewHub(nil, 24*time.Hour)
	defer h.Close()
	g, err := h.New(context.Background(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	g.Mu.Lock()
	g.LastSeen = time.Now().Add(-23 * time.Hour)
	g.Mu.Unlock()
	if n := h.Sweep(time.Now()); n != 0 || h.Len() != 1 {
		t.Fatalf("game removed before 24 hours of inactivity")
	}

	g.Mu.Lock()
	g.LastSeen = time.Now().Add(-25 * time.Hour)
	g.Mu.Unlock()
	if n := h.Sweep(time.Now()); n != 1 || h.Len() != 0 {
		t.Fatalf("game not removed after 24 hours of inactivity")
	}
	if _, err := h.Get(context.Background(), g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a store, got %v", err)
	}
}

func TestHubNewFromFEN(t *testing.T) {
	h := NewHub(nil, time.Hour)
	defer h.Close()
	if _, err := h.New(context.Background(), "not a fen"); err == nil {
		t.Fatalf("expected bad fen to fail")
	}
	g, err := h.New(context.Background(), "4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got, _ := h.Get(context.Background(), g.ID); got != g {
		t.Fatalf("expected the same live game back")
	}
	if snap := g.Snapshot(); snap.CurrentTurn != oracle.Black || len(snap.Occupied()) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCheckFromFEN(t *testing.T) {
	cases := []struct {
		name, fen string
		want      square.Label
	}{
		{"rook on file", "4k3/8/8/8/8/8/4R3/4K3 b - - 0 1", "e8"},
		{"pinned rook still checks", "4k3/8/8/8/K3R2r/8/8/8 b - - 0 1", "e8"},
		{"knight", "4k3/8/3N4/8/8/8/8/4K3 b - - 0 1", "e8"},
		{"white pawn", "4k3/3P4/8/8/8/8/8/4K3 b - - 0 1", "e8"},
		{"black pawn", "4k3/8/8/8/8/8/3p4/4K3 w - - 0 1", "e1"},
		{"bishop", "4k3/8/8/8/B7/8/8/4K3 b - - 0 1", "e8"},
		{"blocked rook", "4k3/4p3/8/8/8/8/4R3/4K3 b - - 0 1", ""},
		{"rook off file", "4k3/8/8/8/8/8/3R4/4K3 b - - 0 1", ""},
		{"pawn ahead of king", "8/8/3P4/4k3/8/8/8/4K3 b - - 0 1", ""},
	}
	for _, tc := range cases {
		snap := newTestGame(t, tc.fen).Snapshot()
		if snap.Check != tc.want {
			t.Fatalf("%s: expected check %q, got %q", tc.name, tc.want, snap.Check)
		}
		if snap.Checkmate {
			t.Fatalf("%s: unexpected checkmate", tc.name)
		}
	}
}

func TestHubFENGameReportsCheck(t *testing.T) {
	h := NewHub(nil, time.Hour)
	defer h.Close()
	g, err := h.New(context.Background(), "4k3/8/8/8/8/8/4R3/4K3 b - - 0 1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if snap := g.Snapshot(); snap.Check != "e8" {
		t.Fatalf("expected check on e8, got %q", snap.Check)
	}
	snap, err := g.Move(context.Background(), "e8", oracle.MoveRequest{MoveTo: "d8"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if snap.Check != "" {
		t.Fatalf("check not cleared after escaping, got %q", snap.Check)
	}
}

func TestCapturePromotion(t *testing.T) {
	g := newTestGame(t, "1r5k/P7/8/8/8/8/8/K7 w - - 0 1")
	knight := "knight"
	snap, err := g.Capture(context.Background(), "a7", oracle.CaptureRequest{MoveTo: "b8", KillPos: "b8", PromoteTo: &knight})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snap.PieceAt("b8") != "♘" {
		t.Fatalf("expected knight on b8, got %q", snap.PieceAt("b8"))
	}

	g = newTestGame(t, "1r5k/P7/8/8/8/8/8/K7 w - - 0 1")
	snap, err = g.Capture(context.Background(), "a7", oracle.CaptureRequest{MoveTo: "b8", KillPos: "b8"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snap.PieceAt("b8") != "♕" {
		t.Fatalf("expected queen by default, got %q", snap.PieceAt("b8"))
	}
}
