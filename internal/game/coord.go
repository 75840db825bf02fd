// internal/game/coord.go
//
// Board coordinates and their textual form.
// A coordinate is written as <ColumnLetter><RowDigit>, e.g. "B7":
//   - column letters A..J map to Col 0..9
//   - row digits 0..9 map to Row 0..9
//
// Coordinates are plain comparable values and are used as map keys throughout
// the engine.

package game

import "fmt"

// BoardSize is the edge length of the square board.
const BoardSize = 10

const columnLetters = "ABCDEFGHIJ"

// Coordinate addresses one cell of the board.
type Coordinate struct {
	Row int // 0..9, the digit
	Col int // 0..9, index of the letter
}

// CoordinateAt builds a coordinate from array indices.
// Returns ErrInvalidCoordinate if either index is off the board.
func CoordinateAt(row, col int) (Coordinate, error) {
	c := Coordinate{Row: row, Col: col}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: row %d col %d", ErrInvalidCoordinate, row, col)
	}
	return c, nil
}

// ParseCoordinate converts text like "B7" into a Coordinate.
//
// Rules:
//   - exactly two bytes, no surrounding whitespace
//   - first byte is an uppercase letter A..J
//   - second byte is an ASCII digit 0..9
func ParseCoordinate(text string) (Coordinate, error) {
	if len(text) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}
	col := letterIndex(text[0])
	if col < 0 {
		return Coordinate{}, fmt.Errorf("%w: bad column in %q", ErrInvalidCoordinate, text)
	}
	d := text[1]
	if d < '0' || d > '9' {
		return Coordinate{}, fmt.Errorf("%w: bad row in %q", ErrInvalidCoordinate, text)
	}
	return Coordinate{Row: int(d - '0'), Col: col}, nil
}

// MustParseCoordinate is ParseCoordinate for literals known to be valid.
func MustParseCoordinate(text string) Coordinate {
	c, err := ParseCoordinate(text)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether both components are on the board.
func (c Coordinate) Valid() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// String returns the canonical text form. Off-board values render as "??".
func (c Coordinate) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{columnLetters[c.Col], byte('0' + c.Row)})
}

// AllCoordinates lists every cell in row-major order.
func AllCoordinates() []Coordinate {
	out := make([]Coordinate, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			out = append(out, Coordinate{Row: r, Col: c})
		}
	}
	return out
}

func letterIndex(b byte) int {
	for i := 0; i < len(columnLetters); i++ {
		if columnLetters[i] == b {
			return i
		}
	}
	return -1
}
