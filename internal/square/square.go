package square

import (
	"errors"
	"fmt"

	"github.com/corentings/chess/v2"
)

// Coordinate is a zero-based grid position. X is the file index (a=0),
// Y is the row index counted from the top of the board (rank 8 = 0).
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Label is an algebraic square name such as "e4".
type Label string

// ErrBadLabel is returned by Parse for anything that is not a square name.
var ErrBadLabel = errors.New("bad square label")

func (c Coordinate) valid() bool {
	return c.X >= 0 && c.X < 8 && c.Y >= 0 && c.Y < 8
}

// ToLabel converts a coordinate to its algebraic label. It panics when the
// coordinate is off the board.
func ToLabel(c Coordinate) Label {
	if !c.valid() {
		panic(fmt.Sprintf("square: coordinate out of range: %+v", c))
	}
	return Label([]byte{byte('a' + c.X), byte('0' + 8 - c.Y)})
}

// ToCoordinate converts a label back to its coordinate. It panics when the
// label is not one of the 64 squares.
func ToCoordinate(l Label) Coordinate {
	if !l.Valid() {
		panic(fmt.Sprintf("square: invalid label %q", string(l)))
	}
	return Coordinate{X: int(l[0] - 'a'), Y: 8 - int(l[1]-'0')}
}

// Parse validates s and returns it as a Label.
func Parse(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrBadLabel, s)
	}
	return l, nil
}

// Valid reports whether l names one of the 64 squares.
func (l Label) Valid() bool {
	return len(l) == 2 && l[0] >= 'a' && l[0] <= 'h' && l[1] >= '1' && l[1] <= '8'
}

// File returns the zero-based file index of l.
func (l Label) File() int { return int(l[0] - 'a') }

// Offset returns the label dx files and dy rows away (rows grow towards rank 1).
func (l Label) Offset(dx, dy int) (Label, bool) {
	c := ToCoordinate(l)
	n := Coordinate{X: c.X + dx, Y: c.Y + dy}
	if !n.valid() {
		return "", false
	}
	return ToLabel(n), true
}

func (l Label) String() string { return string(l) }

// All returns every square in row order, a8 first and h1 last.
func All() []Label {
	out := make([]Label, 0, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			out = append(out, ToLabel(Coordinate{X: x, Y: y}))
		}
	}
	return out
}

// ToChess maps a label onto the rules library's square index.
func ToChess(l Label) chess.Square {
	c := ToCoordinate(l)
	return chess.Square(c.X + 8*(7-c.Y))
}

// FromChess maps a rules library square back to a label.
func FromChess(sq chess.Square) Label {
	i := int(sq)
	return ToLabel(Coordinate{X: i % 8, Y: 7 - i/8})
}
