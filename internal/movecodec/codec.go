package movecodec

import (
	"errors"
	"fmt"
	"strings"

	"chessboard/internal/square"
)

// Sentinel characters of the oracle's move encoding. None of them can appear
// in a square label.
const (
	SentinelPromotion    = '*'
	SentinelPawnDiagonal = '/'
	SentinelThreat       = '#'
	SentinelCapture      = '!'
	SentinelCastle       = '$'
	SentinelEnPassant    = '^'
	SentinelFriendly     = '@'

	segmentSeparator = ':'
)

// ErrMalformed is returned when an encoded move does not follow the grammar.
var ErrMalformed = errors.New("malformed move encoding")

// Descriptor is a decoded legal-destination entry.
type Descriptor struct {
	Destination        square.Label `json:"position"`
	IsPromotion        bool         `json:"isPromotingMove"`
	IsPawnDiagonal     bool         `json:"isPawnDiagonal"`
	IsThreat           bool         `json:"isAttackableMove"`
	IsCapture          bool         `json:"isKillingMove"`
	IsCastle           bool         `json:"isCastlingMove"`
	IsEnPassant        bool         `json:"isEnPassant"`
	IsFriendlyOccupied bool         `json:"isFriendlyPiece"`
	CaptureTarget      square.Label `json:"killTarget,omitempty"`
	CastleRookSquare   square.Label `json:"castleTarget,omitempty"`
}

// flag binds a sentinel to the descriptor field it sets.
type flag struct {
	sentinel byte
	set      func(*Descriptor)
	get      func(Descriptor) bool
}

var flags = []flag{
	{SentinelPromotion, func(d *Descriptor) { d.IsPromotion = true }, func(d Descriptor) bool { return d.IsPromotion }},
	{SentinelPawnDiagonal, func(d *Descriptor) { d.IsPawnDiagonal = true }, func(d Descriptor) bool { return d.IsPawnDiagonal }},
	{SentinelThreat, func(d *Descriptor) { d.IsThreat = true }, func(d Descriptor) bool { return d.IsThreat }},
	{SentinelCapture, func(d *Descriptor) { d.IsCapture = true }, func(d Descriptor) bool { return d.IsCapture }},
	{SentinelCastle, func(d *Descriptor) { d.IsCastle = true }, func(d Descriptor) bool { return d.IsCastle }},
	{SentinelEnPassant, func(d *Descriptor) { d.IsEnPassant = true }, func(d Descriptor) bool { return d.IsEnPassant }},
	{SentinelFriendly, func(d *Descriptor) { d.IsFriendlyOccupied = true }, func(d Descriptor) bool { return d.IsFriendlyOccupied }},
}

func isSentinel(c byte) bool {
	for _, f := range flags {
		if f.sentinel == c {
			return true
		}
	}
	return false
}

// Decode parses one entry of the oracle's legal-destination list.
func Decode(raw string) (Descriptor, error) {
	var d Descriptor

	end := strings.IndexFunc(raw, func(r rune) bool {
		return r == segmentSeparator || (r < 0x80 && isSentinel(byte(r)))
	})
	if end < 0 {
		end = len(raw)
	}
	dest, err := square.Parse(raw[:end])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: destination of %q", ErrMalformed, raw)
	}
	d.Destination = dest

	for _, f := range flags {
		if strings.IndexByte(raw, f.sentinel) >= 0 {
			f.set(&d)
		}
	}

	if d.IsCapture {
		if d.CaptureTarget, err = operand(raw, SentinelCapture); err != nil {
			return Descriptor{}, err
		}
	}
	if d.IsCastle {
		if d.CastleRookSquare, err = operand(raw, SentinelCastle); err != nil {
			return Descriptor{}, err
		}
	}
	return d, nil
}

// operand returns the square written right after the first occurrence of sentinel.
func operand(raw string, sentinel byte) (square.Label, error) {
	i := strings.IndexByte(raw, sentinel)
	if i+3 > len(raw) {
		return "", fmt.Errorf("%w: missing square after %q in %q", ErrMalformed, sentinel, raw)
	}
	l, err := square.Parse(raw[i+1 : i+3])
	if err != nil {
		return "", fmt.Errorf("%w: operand of %q in %q", ErrMalformed, sentinel, raw)
	}
	return l, nil
}

// Encode renders d in the canonical form dest[:flags], e.g. "e6:!e5^".
func Encode(d Descriptor) string {
	var b strings.Builder
	b.WriteString(string(d.Destination))
	mark := b.Len()
	for _, f := range flags {
		if !f.get(d) {
			continue
		}
		b.WriteByte(f.sentinel)
		switch f.sentinel {
		case SentinelCapture:
			b.WriteString(string(d.CaptureTarget))
		case SentinelCastle:
			b.WriteString(string(d.CastleRookSquare))
		}
	}
	if b.Len() == mark {
		return b.String()
	}
	s := b.String()
	return s[:mark] + string(segmentSeparator) + s[mark:]
}

// Keep reports whether a decoded destination is worth offering to the player.
// Pawn diagonals that capture nothing and squares held by the mover's own
// pieces are dropped.
func Keep(d Descriptor) bool {
	if d.IsPawnDiagonal && !d.IsCapture {
		return false
	}
	return !d.IsFriendlyOccupied
}
