package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"chessboard/internal/movecodec"
	"chessboard/internal/oracle"
	"chessboard/internal/render"
	"chessboard/internal/square"
)

// ErrDiverged is returned when the visual pieces no longer match the oracle.
var ErrDiverged = errors.New("visual board diverged from oracle")

// Kind is the shape of a confirmed move.
type Kind int

const (
	Quiet Kind = iota
	Capture
	Castle
)

func (k Kind) String() string {
	switch k {
	case Quiet:
		return "move"
	case Capture:
		return "capture"
	case Castle:
		return "castle"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Handle identifies one piece drawn by the renderer.
type Handle struct {
	ID    string `json:"id"`
	Glyph string `json:"glyph"`
}

// Reconciler owns the square -> visual piece mapping and the check mark.
type Reconciler struct {
	pieces  map[square.Label]Handle
	checked square.Label
}

// New returns an empty reconciler. Call Populate before applying moves.
func New() *Reconciler {
	return &Reconciler{pieces: make(map[square.Label]Handle)}
}

// At returns the handle drawn on l.
func (r *Reconciler) At(l square.Label) (Handle, bool) {
	h, ok := r.pieces[l]
	return h, ok
}

// Squares returns the occupied squares of the visual board, sorted.
func (r *Reconciler) Squares() []square.Label {
	out := make([]square.Label, 0, len(r.pieces))
	for l := range r.pieces {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Checked returns the square currently marked as in check, or "".
func (r *Reconciler) Checked() square.Label { return r.checked }

// Populate discards every existing handle and draws the snapshot from scratch.
// newID must return a fresh identifier on every call.
func (r *Reconciler) Populate(snap oracle.Snapshot, newID func() string) []render.Op {
	var ops []render.Op
	for _, l := range r.Squares() {
		ops = append(ops, render.Op{Kind: render.Remove, Handle: r.pieces[l].ID, Square: l})
	}
	r.pieces = make(map[square.Label]Handle)
	for _, l := range snap.Occupied() {
		h := Handle{ID: newID(), Glyph: snap.PieceAt(l)}
		r.pieces[l] = h
		ops = append(ops, render.Op{Kind: render.Place, Handle: h.ID, Glyph: h.Glyph, Square: l})
	}
	return append(ops, r.Annotate(snap)...)
}

// RookDestination returns where the rook lands when the king castles from
// king to kingDest with the rook starting on rook. The rook ends next to the
// king on the side it came from.
func RookDestination(king, kingDest, rook square.Label) square.Label {
	dx := -1
	if rook.File() < king.File() {
		dx = 1
	}
	l, ok := kingDest.Offset(dx, 0)
	if !ok {
		panic(fmt.Sprintf("reconcile: rook destination off board for %s->%s with rook %s", king, kingDest, rook))
	}
	return l
}

// Apply moves handles for a confirmed move from prior to dest.
func (r *Reconciler) Apply(prior, dest square.Label, kind Kind, d movecodec.Descriptor) ([]render.Op, error) {
	mover, ok := r.pieces[prior]
	if !ok {
		return nil, fmt.Errorf("%w: no piece on %s", ErrDiverged, prior)
	}

	var ops []render.Op
	switch kind {
	case Capture:
		target, ok := r.pieces[d.CaptureTarget]
		if !ok {
			return nil, fmt.Errorf("%w: no piece to capture on %s", ErrDiverged, d.CaptureTarget)
		}
		if _, taken := r.pieces[dest]; taken && dest != d.CaptureTarget {
			return nil, fmt.Errorf("%w: capture onto occupied %s", ErrDiverged, dest)
		}
		delete(r.pieces, d.CaptureTarget)
		r.relocate(prior, dest, mover)
		ops = append(ops,
			render.Op{Kind: render.Relocate, Handle: mover.ID, From: prior, Square: dest},
			render.Op{Kind: render.Remove, Handle: target.ID, Square: d.CaptureTarget},
		)
	case Quiet, Castle:
		if _, taken := r.pieces[dest]; taken {
			return nil, fmt.Errorf("%w: quiet move onto occupied %s", ErrDiverged, dest)
		}
		var rook Handle
		var rookTo square.Label
		if d.CastleRookSquare != "" {
			if rook, ok = r.pieces[d.CastleRookSquare]; !ok {
				return nil, fmt.Errorf("%w: no rook on %s", ErrDiverged, d.CastleRookSquare)
			}
			rookTo = RookDestination(prior, dest, d.CastleRookSquare)
			if h, taken := r.pieces[rookTo]; taken && h != mover {
				return nil, fmt.Errorf("%w: rook destination %s is occupied", ErrDiverged, rookTo)
			}
		}
		r.relocate(prior, dest, mover)
		ops = append(ops, render.Op{Kind: render.Relocate, Handle: mover.ID, From: prior, Square: dest})
		if d.CastleRookSquare != "" {
			r.relocate(d.CastleRookSquare, rookTo, rook)
			ops = append(ops, render.Op{Kind: render.Relocate, Handle: rook.ID, From: d.CastleRookSquare, Square: rookTo})
		}
	default:
		return nil, fmt.Errorf("reconcile: unknown move kind %v", kind)
	}
	return ops, nil
}

func (r *Reconciler) relocate(from, to square.Label, h Handle) {
	delete(r.pieces, from)
	r.pieces[to] = h
}

// Relabel updates handles whose piece changed identity, which only happens on
// promotion.
func (r *Reconciler) Relabel(snap oracle.Snapshot) []render.Op {
	var ops []render.Op
	for _, l := range r.Squares() {
		h := r.pieces[l]
		g := snap.PieceAt(l)
		if g == "" || g == h.Glyph {
			continue
		}
		h.Glyph = g
		r.pieces[l] = h
		ops = append(ops, render.Op{Kind: render.Relabel, Handle: h.ID, Glyph: g, Square: l})
	}
	return ops
}

// Annotate keeps at most one square marked as in check, following the snapshot.
func (r *Reconciler) Annotate(snap oracle.Snapshot) []render.Op {
	if snap.Check == r.checked {
		return nil
	}
	var ops []render.Op
	if r.checked != "" {
		ops = append(ops, render.Op{Kind: render.ClearCheck, Square: r.checked})
	}
	r.checked = snap.Check
	if snap.Check != "" {
		ops = append(ops, render.Op{Kind: render.MarkCheck, Square: snap.Check})
	}
	return ops
}

// Verify checks that the visual board occupies exactly the snapshot's squares.
func (r *Reconciler) Verify(snap oracle.Snapshot) error {
	occupied := snap.Occupied()
	if len(occupied) != len(r.pieces) {
		return fmt.Errorf("%w: %d visual pieces, %d on the board", ErrDiverged, len(r.pieces), len(occupied))
	}
	for _, l := range occupied {
		if _, ok := r.pieces[l]; !ok {
			return fmt.Errorf("%w: %s is occupied but not drawn", ErrDiverged, l)
		}
	}
	return nil
}

// Reconcile applies a confirmed move and brings labels and the check mark in
// line with the new snapshot. The returned ops are valid even when the
// postcondition check fails.
func (r *Reconciler) Reconcile(prior, dest square.Label, kind Kind, d movecodec.Descriptor, snap oracle.Snapshot) ([]render.Op, error) {
	ops, err := r.Apply(prior, dest, kind, d)
	if err != nil {
		return nil, err
	}
	ops = append(ops, r.Relabel(snap)...)
	ops = append(ops, r.Annotate(snap)...)
	return ops, r.Verify(snap)
}
