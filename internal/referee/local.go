package referee

import (
	"context"

	"chessboard/internal/oracle"
	"chessboard/internal/square"
)

// Local serves the oracle contract in process, without HTTP.
type Local struct {
	Hub *Hub
}

var _ oracle.Oracle = Local{}

func (l Local) Probe(context.Context) error { return nil }

func (l Local) NewGame(ctx context.Context) (oracle.Snapshot, error) {
	g, err := l.Hub.New(ctx, "")
	if err != nil {
		return oracle.Snapshot{}, err
	}
	return g.Snapshot(), nil
}

func (l Local) LegalDestinations(ctx context.Context, gameID string, from square.Label) ([]string, error) {
	g, err := l.Hub.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.Destinations(from), nil
}

func (l Local) SubmitMove(ctx context.Context, gameID string, from square.Label, req oracle.MoveRequest) (oracle.Snapshot, error) {
	g, err := l.Hub.Get(ctx, gameID)
	if err != nil {
		return oracle.Snapshot{}, err
	}
	return g.Move(ctx, from, req)
}

func (l Local) SubmitCapture(ctx context.Context, gameID string, from square.Label, req oracle.CaptureRequest) (oracle.Snapshot, error) {
	g, err := l.Hub.Get(ctx, gameID)
	if err != nil {
		return oracle.Snapshot{}, err
	}
	return g.Capture(ctx, from, req)
}
