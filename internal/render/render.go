package render

import "chessboard/internal/square"

// Kind names a single instruction for the board renderer.
type Kind string

const (
	Place           Kind = "place"
	Relocate        Kind = "relocate"
	Remove          Kind = "remove"
	Relabel         Kind = "relabel"
	MarkCheck       Kind = "markCheck"
	ClearCheck      Kind = "clearCheck"
	Highlight       Kind = "highlight"
	ClearHighlights Kind = "clearHighlights"
)

// HighlightKind distinguishes quiet destinations from captures.
type HighlightKind string

const (
	Available  HighlightKind = "available"
	Threatened HighlightKind = "threatened"
)

// Op is one visual instruction. Only the fields relevant to Kind are set.
type Op struct {
	Kind      Kind          `json:"kind"`
	Handle    string        `json:"handle,omitempty"`
	Glyph     string        `json:"glyph,omitempty"`
	From      square.Label  `json:"from,omitempty"`
	Square    square.Label  `json:"square,omitempty"`
	Highlight HighlightKind `json:"highlight,omitempty"`
}

// Sink consumes instructions produced by the interaction core.
type Sink interface {
	Apply(ops []Op) error
}

// Highlights clears the board highlights and then marks every quiet
// destination as Available and every capture as Threatened.
func Highlights(moves, captures []square.Label) []Op {
	ops := make([]Op, 0, len(moves)+len(captures)+1)
	ops = append(ops, Op{Kind: ClearHighlights})
	for _, sq := range moves {
		ops = append(ops, Op{Kind: Highlight, Square: sq, Highlight: Available})
	}
	for _, sq := range captures {
		ops = append(ops, Op{Kind: Highlight, Square: sq, Highlight: Threatened})
	}
	return ops
}

// Recorder is a Sink that keeps everything it is given.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) Apply(ops []Op) error {
	r.Ops = append(r.Ops, ops...)
	return nil
}
