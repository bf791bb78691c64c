package selection

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"chessboard/internal/logging"
	"chessboard/internal/movecodec"
	"chessboard/internal/oracle"
	"chessboard/internal/reconcile"
	"chessboard/internal/render"
	"chessboard/internal/square"
	"chessboard/pkg/utils"
)

var (
	// ErrBusy is returned when a click arrives while an earlier one is still
	// waiting on the oracle. The click is dropped.
	ErrBusy = errors.New("selection: previous click still pending")
	// ErrNoGame is returned by Click before Start has succeeded.
	ErrNoGame = errors.New("selection: no game in progress")
)

// State is the interaction state between clicks. The zero value is Idle.
type State struct {
	Selected square.Label
	Moves    []movecodec.Descriptor
	Captures []movecodec.Descriptor
}

// Idle reports whether no piece is selected.
func (s State) Idle() bool { return s.Selected == "" }

// Action is what a click on a square means in the current state.
type Action int

const (
	Select Action = iota
	Deselect
	Abort
	MovePiece
	CapturePiece
)

func (a Action) String() string {
	switch a {
	case Select:
		return "select"
	case Deselect:
		return "deselect"
	case Abort:
		return "abort"
	case MovePiece:
		return "move"
	case CapturePiece:
		return "capture"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Transition is the decision for one click.
type Transition struct {
	Action Action
	Square square.Label
	// Move is the matched destination for MovePiece and CapturePiece.
	Move movecodec.Descriptor
}

// Decide classifies a click on pos. It has no side effects.
func Decide(st State, snap oracle.Snapshot, pos square.Label) Transition {
	for _, d := range st.Captures {
		if d.Destination == pos {
			return Transition{Action: CapturePiece, Square: pos, Move: d}
		}
	}
	for _, d := range st.Moves {
		if d.Destination == pos {
			return Transition{Action: MovePiece, Square: pos, Move: d}
		}
	}
	if !snap.OwnedByMover(pos) {
		return Transition{Action: Abort, Square: pos}
	}
	if pos == st.Selected {
		return Transition{Action: Deselect, Square: pos}
	}
	return Transition{Action: Select, Square: pos}
}

// Machine drives one game session: it turns clicks into oracle calls and
// render instructions. Only one Start or Click runs at a time; overlapping
// calls fail with ErrBusy.
type Machine struct {
	oracle  oracle.Oracle
	rec     *reconcile.Reconciler
	newID   func() string
	promote string

	busy  atomic.Bool
	state State
	snap  oracle.Snapshot
}

// Option configures a Machine.
type Option func(*Machine)

// WithPromotion sets the piece requested when a pawn promotes. An empty
// value leaves the choice to the oracle.
func WithPromotion(piece string) Option {
	return func(m *Machine) { m.promote = piece }
}

// WithHandleIDs overrides how visual piece identifiers are generated.
func WithHandleIDs(f func() string) Option {
	return func(m *Machine) { m.newID = f }
}

// New creates an idle machine backed by o.
func New(o oracle.Oracle, opts ...Option) *Machine {
	m := &Machine{
		oracle:  o,
		rec:     reconcile.New(),
		newID:   utils.HandleIDs("p"),
		promote: "queen",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current interaction state.
func (m *Machine) State() State { return m.state }

// Snapshot returns the last board confirmed by the oracle.
func (m *Machine) Snapshot() oracle.Snapshot { return m.snap }

// Reconciler exposes the visual piece mapping.
func (m *Machine) Reconciler() *reconcile.Reconciler { return m.rec }

// Start probes the oracle, opens a new game and draws it.
func (m *Machine) Start(ctx context.Context) ([]render.Op, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer m.busy.Store(false)

	if err := m.oracle.Probe(ctx); err != nil {
		return nil, err
	}
	snap, err := m.oracle.NewGame(ctx)
	if err != nil {
		return nil, err
	}
	m.snap = snap
	m.state = State{}
	logging.Debugf("game %s started, %s to move", snap.GameID, snap.CurrentTurn)

	ops := []render.Op{{Kind: render.ClearHighlights}}
	return append(ops, m.rec.Populate(snap, m.newID)...), nil
}

// Click handles a click on pos and returns the instructions to render. On
// error the returned ops, if any, still describe the resulting state.
func (m *Machine) Click(ctx context.Context, pos square.Label) ([]render.Op, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer m.busy.Store(false)

	if m.snap.GameID == "" {
		return nil, ErrNoGame
	}

	t := Decide(m.state, m.snap, pos)
	logging.Debugf("click %s (selected %q): %s", pos, m.state.Selected, t.Action)

	switch t.Action {
	case CapturePiece:
		return m.capture(ctx, t)
	case MovePiece:
		return m.move(ctx, t)
	case Select:
		return m.selectSquare(ctx, pos)
	default:
		m.state = State{}
		return []render.Op{{Kind: render.ClearHighlights}}, nil
	}
}

func (m *Machine) capture(ctx context.Context, t Transition) ([]render.Op, error) {
	from := m.state.Selected
	req := oracle.CaptureRequest{MoveTo: t.Square, KillPos: t.Move.CaptureTarget}
	if t.Move.IsPromotion && m.promote != "" {
		p := m.promote
		req.PromoteTo = &p
	}
	snap, err := m.oracle.SubmitCapture(ctx, m.snap.GameID, from, req)
	if err != nil {
		return nil, err
	}
	return m.confirm(from, t.Square, reconcile.Capture, t.Move, snap), nil
}

func (m *Machine) move(ctx context.Context, t Transition) ([]render.Op, error) {
	from := m.state.Selected
	req := oracle.MoveRequest{MoveTo: t.Square}
	kind := reconcile.Quiet
	if t.Move.IsCastle {
		rook := t.Move.CastleRookSquare
		req.CastleTarget = &rook
		kind = reconcile.Castle
	}
	if t.Move.IsPromotion && m.promote != "" {
		p := m.promote
		req.PromoteTo = &p
	}
	snap, err := m.oracle.SubmitMove(ctx, m.snap.GameID, from, req)
	if err != nil {
		return nil, err
	}
	return m.confirm(from, t.Square, kind, t.Move, snap), nil
}

// confirm applies an accepted move. When the visual board cannot follow the
// oracle it is redrawn from the snapshot.
func (m *Machine) confirm(from, to square.Label, kind reconcile.Kind, d movecodec.Descriptor, snap oracle.Snapshot) []render.Op {
	m.snap = snap
	m.state = State{}

	ops := []render.Op{{Kind: render.ClearHighlights}}
	moved, err := m.rec.Reconcile(from, to, kind, d, snap)
	if err != nil {
		logging.Errorf("%s %s->%s: %v; redrawing board", kind, from, to, err)
		return append(ops, m.rec.Populate(snap, m.newID)...)
	}
	if snap.Checkmate {
		logging.Debugf("game %s: checkmate", snap.GameID)
	} else if snap.Stalemate {
		logging.Debugf("game %s: stalemate", snap.GameID)
	}
	return append(ops, moved...)
}

func (m *Machine) selectSquare(ctx context.Context, pos square.Label) ([]render.Op, error) {
	m.state = State{Selected: pos}
	cleared := []render.Op{{Kind: render.ClearHighlights}}

	raw, err := m.oracle.LegalDestinations(ctx, m.snap.GameID, pos)
	if err != nil {
		return cleared, err
	}

	var moves, captures []movecodec.Descriptor
	for _, s := range raw {
		d, err := movecodec.Decode(s)
		if err != nil {
			m.state = State{}
			logging.Errorf("moves for %s: %v", pos, err)
			return cleared, err
		}
		if !movecodec.Keep(d) {
			continue
		}
		if d.IsCapture {
			captures = append(captures, d)
		} else {
			moves = append(moves, d)
		}
	}
	m.state.Moves = moves
	m.state.Captures = captures
	return render.Highlights(destinations(moves), destinations(captures)), nil
}

func destinations(ds []movecodec.Descriptor) []square.Label {
	out := make([]square.Label, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Destination)
	}
	return out
}
