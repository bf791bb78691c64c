package square

import (
	"errors"
	"testing"

	"github.com/corentings/chess/v2"
)

func TestCoordinateRoundTrip(t *testing.T) {
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			c := Coordinate{X: x, Y: y}
			if got := ToCoordinate(ToLabel(c)); got != c {
				t.Fatalf("round trip %+v gave %+v", c, got)
			}
		}
	}
}

func TestLabelRoundTrip(t *testing.T) {
	all := All()
	if len(all) != 64 {
		t.Fatalf("expected 64 labels, got %d", len(all))
	}
	for _, l := range all {
		if got := ToLabel(ToCoordinate(l)); got != l {
			t.Fatalf("round trip %s gave %s", l, got)
		}
	}
}

func TestAffineMapping(t *testing.T) {
	if got := ToLabel(Coordinate{X: 0, Y: 0}); got != "a8" {
		t.Fatalf("expected a8 got %s", got)
	}
	if got := ToCoordinate("e4"); got != (Coordinate{X: 4, Y: 4}) {
		t.Fatalf("expected {4 4} got %+v", got)
	}
	if got := ToLabel(Coordinate{X: 7, Y: 7}); got != "h1" {
		t.Fatalf("expected h1 got %s", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "e", "e9", "i1", "E4", "e44", "!e"} {
		if _, err := Parse(s); !errors.Is(err, ErrBadLabel) {
			t.Fatalf("expected ErrBadLabel for %q, got %v", s, err)
		}
	}
	if l, err := Parse("h8"); err != nil || l != "h8" {
		t.Fatalf("expected h8, got %q %v", l, err)
	}
}

func TestToLabelPanicsOffBoard(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	ToLabel(Coordinate{X: 8, Y: 0})
}

func TestOffset(t *testing.T) {
	if l, ok := Label("g1").Offset(-1, 0); !ok || l != "f1" {
		t.Fatalf("expected f1, got %s %v", l, ok)
	}
	if _, ok := Label("h1").Offset(1, 0); ok {
		t.Fatalf("expected off-board offset to fail")
	}
}

func TestChessBridge(t *testing.T) {
	if got := ToChess("e4"); got != chess.E4 {
		t.Fatalf("expected E4 got %v", got)
	}
	if got := ToChess("a1"); got != chess.A1 {
		t.Fatalf("expected A1 got %v", got)
	}
	for _, l := range All() {
		if got := FromChess(ToChess(l)); got != l {
			t.Fatalf("bridge round trip %s gave %s", l, got)
		}
		if ToChess(l).String() != string(l) {
			t.Fatalf("square name mismatch for %s: %s", l, ToChess(l).String())
		}
	}
}
