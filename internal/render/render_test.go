package render

import (
	"encoding/json"
	"testing"

	"chessboard/internal/square"
)

func TestHighlights(t *testing.T) {
	ops := Highlights([]square.Label{"e3", "e4"}, []square.Label{"d5"})
	if len(ops) != 4 || ops[0].Kind != ClearHighlights {
		t.Fatalf("expected clear then three highlights, got %+v", ops)
	}
	if ops[1].Highlight != Available || ops[2].Highlight != Available || ops[3].Highlight != Threatened {
		t.Fatalf("unexpected highlight kinds %+v", ops)
	}
	if ops[3].Square != "d5" {
		t.Fatalf("expected capture on d5, got %s", ops[3].Square)
	}
}

func TestHighlightsEmptyStillClears(t *testing.T) {
	ops := Highlights(nil, nil)
	if len(ops) != 1 || ops[0].Kind != ClearHighlights {
		t.Fatalf("expected a lone clear, got %+v", ops)
	}
}

func TestOpJSONOmitsUnusedFields(t *testing.T) {
	b, err := json.Marshal(Op{Kind: MarkCheck, Square: "e1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(b); got != `{"kind":"markCheck","square":"e1"}` {
		t.Fatalf("unexpected json %s", got)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var s Sink = &r
	_ = s.Apply([]Op{{Kind: ClearHighlights}})
	_ = s.Apply([]Op{{Kind: Place, Handle: "h1", Glyph: "♔", Square: "e1"}})
	if len(r.Ops) != 2 || r.Ops[1].Handle != "h1" {
		t.Fatalf("recorder lost ops: %+v", r.Ops)
	}
}
