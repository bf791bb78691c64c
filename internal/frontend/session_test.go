package frontend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chessboard/internal/referee"
	"chessboard/internal/render"
	"chessboard/internal/selection"
)

type harness struct {
	s     *Session
	rec   *render.Recorder
	notes []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hub := referee.NewHub(nil, time.Hour)
	t.Cleanup(hub.Close)

	h := &harness{rec: &render.Recorder{}}
	n := 0
	h.s = NewSession(referee.Local{Hub: hub}, h.rec, func(text string) error {
		h.notes = append(h.notes, text)
		return nil
	}, selection.WithHandleIDs(func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}))
	if err := h.s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return h
}

func (h *harness) send(t *testing.T, frame string) []render.Op {
	t.Helper()
	before := len(h.rec.Ops)
	if err := h.s.Handle(context.Background(), []byte(frame)); err != nil {
		t.Fatalf("handle %s: %v", frame, err)
	}
	return h.rec.Ops[before:]
}

func (h *harness) click(t *testing.T, sq string) []render.Op {
	t.Helper()
	return h.send(t, `{"type":"click","square":"`+sq+`"}`)
}

func (h *harness) lastNote() string {
	if len(h.notes) == 0 {
		return ""
	}
	return h.notes[len(h.notes)-1]
}

func count(ops []render.Op, kind render.Kind) int {
	n := 0
	for _, op := range ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func TestSessionStartDrawsBoard(t *testing.T) {
	h := newHarness(t)
	if got := count(h.rec.Ops, render.Place); got != 32 {
		t.Fatalf("expected 32 pieces placed, got %d", got)
	}
	if h.lastNote() != "White to move." {
		t.Fatalf("unexpected status %q", h.lastNote())
	}
}

func TestSessionSelectAndMove(t *testing.T) {
	h := newHarness(t)

	ops := h.click(t, "e2")
	if count(ops, render.Highlight) != 2 {
		t.Fatalf("expected two highlighted pushes, got %+v", ops)
	}

	ops = h.click(t, "E4")
	var moved bool
	for _, op := range ops {
		if op.Kind == render.Relocate && op.From == "e2" && op.Square == "e4" {
			moved = true
		}
	}
	if !moved {
		t.Fatalf("expected pawn relocation, got %+v", ops)
	}
	if h.lastNote() != "Black to move." {
		t.Fatalf("unexpected status %q", h.lastNote())
	}
}

func TestSessionIgnoresJunk(t *testing.T) {
	h := newHarness(t)
	notes := len(h.notes)
	for _, frame := range []string{`not json`, `{"type":"click","square":"z9"}`, `{"type":"dance"}`} {
		if ops := h.send(t, frame); len(ops) != 0 {
			t.Fatalf("frame %s produced ops %+v", frame, ops)
		}
	}
	if len(h.notes) != notes {
		t.Fatalf("junk frames produced status lines %v", h.notes[notes:])
	}
}

func TestSessionCheckmate(t *testing.T) {
	h := newHarness(t)
	for _, mv := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}} {
		h.click(t, mv[0])
		h.click(t, mv[1])
	}
	h.click(t, "d8")
	ops := h.click(t, "h4")

	var marked bool
	for _, op := range ops {
		if op.Kind == render.MarkCheck && op.Square == "e1" {
			marked = true
		}
	}
	if !marked {
		t.Fatalf("expected check mark on e1, got %+v", ops)
	}
	if h.lastNote() != "Checkmate. Black wins." {
		t.Fatalf("unexpected status %q", h.lastNote())
	}
}

func TestSessionNewGame(t *testing.T) {
	h := newHarness(t)
	first := h.s.Machine().Snapshot().GameID
	h.click(t, "e2")
	h.click(t, "e4")

	ops := h.send(t, `{"type":"new"}`)
	if h.s.Machine().Snapshot().GameID == first {
		t.Fatalf("expected a fresh game")
	}
	if count(ops, render.Remove) != 32 || count(ops, render.Place) != 32 {
		t.Fatalf("expected the board to be redrawn, got %+v", ops)
	}
	if h.lastNote() != "White to move." {
		t.Fatalf("unexpected status %q", h.lastNote())
	}
}
