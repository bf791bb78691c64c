package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chessboard/internal/logging"
	"chessboard/internal/oracle"
	"chessboard/internal/render"
	"chessboard/internal/selection"
	"chessboard/internal/square"
)

// Message types accepted from the board page.
const (
	MessageClick = "click"
	MessageNew   = "new"
)

// Message is one event from the board page.
type Message struct {
	Type   string `json:"type"`
	Square string `json:"square,omitempty"`
}

// Reply kinds sent back to the board page.
const (
	ReplyOps    = "ops"
	ReplyStatus = "status"
)

// Reply is one frame sent to the board page.
type Reply struct {
	Kind string      `json:"kind"`
	Ops  []render.Op `json:"ops,omitempty"`
	Text string      `json:"text,omitempty"`
}

// Notifier receives status lines for the player.
type Notifier func(text string) error

// Session binds one selection machine to one board page.
type Session struct {
	machine *selection.Machine
	sink    render.Sink
	notify  Notifier
}

// NewSession creates a session rendering into sink.
func NewSession(o oracle.Oracle, sink render.Sink, notify Notifier, opts ...selection.Option) *Session {
	return &Session{
		machine: selection.New(o, opts...),
		sink:    sink,
		notify:  notify,
	}
}

// Machine returns the session's selection machine.
func (s *Session) Machine() *selection.Machine { return s.machine }

// Start opens a fresh game and draws it.
func (s *Session) Start(ctx context.Context) error {
	ops, err := s.machine.Start(ctx)
	if err != nil {
		return s.notify(describe(err))
	}
	if err := s.sink.Apply(ops); err != nil {
		return err
	}
	return s.notify(StatusText(s.machine.Snapshot()))
}

// Handle processes one raw frame from the board page. Only transport errors
// are returned; game and oracle failures are reported to the player.
func (s *Session) Handle(ctx context.Context, raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		logging.Debugf("ignoring malformed frame: %v", err)
		return nil
	}

	switch msg.Type {
	case MessageNew:
		return s.Start(ctx)
	case MessageClick:
		pos, err := square.Parse(strings.ToLower(strings.TrimSpace(msg.Square)))
		if err != nil {
			logging.Debugf("ignoring click: %v", err)
			return nil
		}
		return s.click(ctx, pos)
	default:
		logging.Debugf("ignoring frame of type %q", msg.Type)
		return nil
	}
}

func (s *Session) click(ctx context.Context, pos square.Label) error {
	before := s.machine.Snapshot().GameID
	turn := s.machine.Snapshot().CurrentTurn

	ops, err := s.machine.Click(ctx, pos)
	if len(ops) > 0 {
		if werr := s.sink.Apply(ops); werr != nil {
			return werr
		}
	}
	if err != nil {
		if errors.Is(err, selection.ErrBusy) {
			return nil
		}
		return s.notify(describe(err))
	}

	snap := s.machine.Snapshot()
	if snap.GameID != before || snap.CurrentTurn != turn {
		return s.notify(StatusText(snap))
	}
	return nil
}

// StatusText summarises a snapshot for the player.
func StatusText(snap oracle.Snapshot) string {
	mover := capitalize(string(snap.CurrentTurn))
	switch {
	case snap.Checkmate:
		winner := oracle.White
		if snap.CurrentTurn == oracle.White {
			winner = oracle.Black
		}
		return fmt.Sprintf("Checkmate. %s wins.", capitalize(string(winner)))
	case snap.Stalemate:
		return "Stalemate."
	case snap.Check != "":
		return fmt.Sprintf("%s to move, in check.", mover)
	}
	return fmt.Sprintf("%s to move.", mover)
}

func describe(err error) string {
	switch {
	case errors.Is(err, oracle.ErrUnavailable):
		return "The rules server is offline."
	case errors.Is(err, selection.ErrNoGame):
		return "No game in progress."
	case errors.Is(err, oracle.ErrRequestFailed):
		return "The rules server rejected that request."
	}
	return "Something went wrong: " + err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
