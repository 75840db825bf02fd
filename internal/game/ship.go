// internal/game/ship.go
//
// A Ship knows its name, the cells it occupies, and which of those have been
// hit. It never knows about other ships or the board.

package game

import (
	"unicode"
	"unicode/utf8"
)

// Ship is created by the fleet loader and mutated only through RecordHit.
type Ship struct {
	name   string
	coords []Coordinate            // insertion order from the layout line
	hits   map[Coordinate]struct{} // always a subset of coords
}

func newShip(name string, coords []Coordinate) *Ship {
	return &Ship{
		name:   name,
		coords: coords,
		hits:   make(map[Coordinate]struct{}, len(coords)),
	}
}

// Name returns the ship's name as written in the layout.
func (s *Ship) Name() string { return s.name }

// Len is the number of occupied cells.
func (s *Ship) Len() int { return len(s.coords) }

// Coordinates returns a copy of the occupied cells in layout order.
func (s *Ship) Coordinates() []Coordinate {
	return append([]Coordinate(nil), s.coords...)
}

// Hits returns the hit cells, in layout order.
func (s *Ship) Hits() []Coordinate {
	out := make([]Coordinate, 0, len(s.hits))
	for _, c := range s.coords {
		if _, ok := s.hits[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Occupies reports whether c is one of the ship's cells.
func (s *Ship) Occupies(c Coordinate) bool {
	for _, own := range s.coords {
		if own == c {
			return true
		}
	}
	return false
}

// IsHit reports whether c has been hit on this ship.
func (s *Ship) IsHit(c Coordinate) bool {
	_, ok := s.hits[c]
	return ok
}

// RecordHit marks c as hit. Repeated hits and cells the ship does not occupy
// are no-ops.
func (s *Ship) RecordHit(c Coordinate) {
	if s.Occupies(c) {
		s.hits[c] = struct{}{}
	}
}

// IsSunk is true once every occupied cell has been hit.
func (s *Ship) IsSunk() bool {
	return len(s.hits) == len(s.coords)
}

// Glyph is the upper-cased first character of the name, drawn on every cell
// of a sunk ship.
func (s *Ship) Glyph() rune {
	r, _ := utf8.DecodeRuneInString(s.name)
	return unicode.ToUpper(r)
}
