// internal/game/types.go
//
// Core type definitions for the Battleship game engine.
// Defines:
//   - OutcomeKind / Outcome: the result of resolving one guess.
//   - CellKind / Cell / Snapshot: the render-agnostic board view.

package game

import "strings"

// OutcomeKind is the evaluation result of a single guess.
// Possible values:
//   - "already_resolved": the cell was guessed before (or the game is won); nothing changed.
//   - "miss":    no ship occupies the cell.
//   - "hit":     a ship was hit but is still afloat.
//   - "sunk":    the hit sank a ship.
//   - "victory": the hit sank the last afloat ship.
type OutcomeKind string

const (
	OutcomeAlreadyResolved OutcomeKind = "already_resolved"
	OutcomeMiss            OutcomeKind = "miss"
	OutcomeHit             OutcomeKind = "hit"
	OutcomeSunk            OutcomeKind = "sunk"
	OutcomeVictory         OutcomeKind = "victory"
)

// Outcome describes what a guess did.
// Ship is set for sunk and victory outcomes (the ship that went down).
type Outcome struct {
	Kind  OutcomeKind
	Coord Coordinate
	Ship  string
}

// SankShip reports whether the guess sank a ship, including the final one.
func (o Outcome) SankShip() bool {
	return o.Kind == OutcomeSunk || o.Kind == OutcomeVictory
}

// Productive is false only for repeated guesses.
func (o Outcome) Productive() bool {
	return o.Kind != OutcomeAlreadyResolved
}

// CellKind is the state of one cell as seen by the player.
type CellKind string

const (
	CellEmpty      CellKind = "empty"
	CellMiss       CellKind = "miss"
	CellHitPending CellKind = "hit"  // part of a damaged ship still afloat
	CellSunk       CellKind = "sunk" // part of a sunk ship, shows its glyph
)

// Cell is one snapshot entry. Glyph is only set for CellSunk.
type Cell struct {
	Kind  CellKind
	Glyph rune
}

// Marker returns the legacy single-character marker: "" for empty cells,
// "*" for misses, "X" for pending hits and the ship glyph for sunk cells.
func (c Cell) Marker() string {
	switch c.Kind {
	case CellMiss:
		return "*"
	case CellHitPending:
		return "X"
	case CellSunk:
		return string(c.Glyph)
	default:
		return ""
	}
}

// Snapshot is a read-only grid indexed as [Row][Col].
type Snapshot [BoardSize][BoardSize]Cell

// At returns the cell at c.
func (s Snapshot) At(c Coordinate) Cell { return s[c.Row][c.Col] }

// Rows renders markers row by row for transport to a presentation layer.
func (s Snapshot) Rows() [][]string {
	out := make([][]string, BoardSize)
	for r := range s {
		out[r] = make([]string, BoardSize)
		for c := range s[r] {
			out[r][c] = s[r][c].Marker()
		}
	}
	return out
}

// String draws the grid with '.' for empty cells, one row per line, with
// column letters on top and row digits on the left.
func (s Snapshot) String() string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(columnLetters)
	b.WriteByte('\n')
	for r := range s {
		b.WriteByte(byte('0' + r))
		b.WriteByte(' ')
		for c := range s[r] {
			m := s[r][c].Marker()
			if m == "" {
				m = "."
			}
			b.WriteString(m)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
