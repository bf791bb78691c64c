package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"chessboard/internal/logging"
	"chessboard/internal/square"
)

var (
	// ErrUnavailable is returned without any network traffic while the last
	// liveness probe found the oracle offline.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrRequestFailed wraps transport, status and decoding failures of a
	// single call.
	ErrRequestFailed = errors.New("oracle request failed")
)

// Oracle is the request/response boundary to the rules server.
type Oracle interface {
	Probe(ctx context.Context) error
	NewGame(ctx context.Context) (Snapshot, error)
	LegalDestinations(ctx context.Context, gameID string, from square.Label) ([]string, error)
	SubmitMove(ctx context.Context, gameID string, from square.Label, req MoveRequest) (Snapshot, error)
	SubmitCapture(ctx context.Context, gameID string, from square.Label, req CaptureRequest) (Snapshot, error)
}

// Client talks to a remote oracle over HTTP with JSON bodies.
type Client struct {
	base   string
	http   *http.Client
	online atomic.Bool
}

// NewClient creates a client for the oracle rooted at baseURL. The client
// starts offline; call Probe before anything else.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// Online reports the result of the most recent probe.
func (c *Client) Online() bool { return c.online.Load() }

// Probe checks the oracle root and, failing that, the games listing. Either
// reporting success marks the oracle online.
func (c *Client) Probe(ctx context.Context) error {
	ok := c.statusOK(ctx, "") || c.statusOK(ctx, "/games")
	c.online.Store(ok)
	if !ok {
		log.Printf("Oracle at %s is offline.", c.base)
		return ErrUnavailable
	}
	logging.Debugf("oracle %s online", c.base)
	return nil
}

func (c *Client) statusOK(ctx context.Context, path string) bool {
	var st StatusResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &st); err != nil {
		logging.Debugf("probe %s%s: %v", c.base, path, err)
		return false
	}
	return st.Status == StatusSuccess
}

// NewGame asks the oracle to start a game.
func (c *Client) NewGame(ctx context.Context) (Snapshot, error) {
	if !c.Online() {
		logging.Errorf("cannot generate a new game because the oracle is offline")
		return Snapshot{}, ErrUnavailable
	}
	var snap Snapshot
	if err := c.do(ctx, http.MethodGet, "/games/new", nil, &snap); err != nil {
		return Snapshot{}, c.failed(ctx, "generate a new game", err)
	}
	if snap.GameID == "" {
		return Snapshot{}, c.failed(ctx, "generate a new game", errors.New("empty game id"))
	}
	return snap, nil
}

// LegalDestinations returns the raw encoded destinations for the piece on from.
func (c *Client) LegalDestinations(ctx context.Context, gameID string, from square.Label) ([]string, error) {
	if !c.Online() {
		logging.Errorf("cannot get moves because the oracle is offline")
		return nil, ErrUnavailable
	}
	var res MovesResponse
	if err := c.do(ctx, http.MethodGet, movesPath(gameID, from), nil, &res); err != nil {
		return nil, c.failed(ctx, "get moves for "+string(from), err)
	}
	return res.Moves, nil
}

// SubmitMove plays a quiet move (castling included) and returns the new state.
func (c *Client) SubmitMove(ctx context.Context, gameID string, from square.Label, req MoveRequest) (Snapshot, error) {
	if !c.Online() {
		logging.Errorf("cannot move piece because the oracle is offline")
		return Snapshot{}, ErrUnavailable
	}
	return c.submit(ctx, "move "+string(from), movesPath(gameID, from), req)
}

// SubmitCapture plays a capture, en passant included, and returns the new state.
func (c *Client) SubmitCapture(ctx context.Context, gameID string, from square.Label, req CaptureRequest) (Snapshot, error) {
	if !c.Online() {
		logging.Errorf("cannot capture because the oracle is offline")
		return Snapshot{}, ErrUnavailable
	}
	return c.submit(ctx, "capture with "+string(from), movesPath(gameID, from), req)
}

func (c *Client) submit(ctx context.Context, what, path string, body any) (Snapshot, error) {
	var snap Snapshot
	if err := c.do(ctx, http.MethodPost, path, body, &snap); err != nil {
		return Snapshot{}, c.failed(ctx, what, err)
	}
	if snap.GameID == "" {
		return Snapshot{}, c.failed(ctx, what, errors.New("empty game id"))
	}
	return snap, nil
}

// failed re-probes the oracle once and reports the original failure.
func (c *Client) failed(ctx context.Context, what string, err error) error {
	_ = c.Probe(ctx)
	logging.Errorf("an error occurred while trying to %s: %v", what, err)
	return fmt.Errorf("%w: %s: %w", ErrRequestFailed, what, err)
}

func movesPath(gameID string, from square.Label) string {
	return "/games/" + url.PathEscape(gameID) + "/moves/" + url.PathEscape(string(from))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s %s: %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
