// internal/game/fleet.go
//
// Fleet loading from the layout text format:
//
//	Name;Coord1;Coord2;...;CoordK
//
// one ship per line. Loading is all-or-nothing: the first bad line aborts the
// load and no partial fleet is returned.
//
// Validation rules:
//   - trailing whitespace on a line is ignored; blank lines are skipped
//   - the name must be non-empty (it provides the sunk glyph)
//   - at least one coordinate per ship
//   - every coordinate must parse (ErrInvalidCoordinate)
//   - no coordinate may appear twice anywhere in the layout, including twice
//     on the same line (ErrDuplicateCoordinate)
//
// Duplicate ship names are accepted.

package game

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// Fleet is the set of ships for one session. Membership is fixed once loaded.
type Fleet struct {
	ships []*Ship
}

// Ships returns the ships in layout order.
func (f *Fleet) Ships() []*Ship {
	return append([]*Ship(nil), f.ships...)
}

// Len is the number of ships.
func (f *Fleet) Len() int { return len(f.ships) }

// LoadFleet parses layout lines into a fleet.
func LoadFleet(lines []string) (*Fleet, error) {
	used := make(map[Coordinate]struct{})
	var ships []*Ship

	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t\r\n")
		if line == "" {
			continue
		}
		marks := strings.Split(line, ";")
		name := marks[0]
		if name == "" {
			return nil, &LoadError{Line: i + 1, Err: ErrEmptyShipName}
		}
		if len(marks) < 2 {
			return nil, &LoadError{Line: i + 1, Err: fmt.Errorf("%w: %q", ErrNoCoordinates, name)}
		}

		coords := make([]Coordinate, 0, len(marks)-1)
		for _, text := range marks[1:] {
			c, err := ParseCoordinate(text)
			if err != nil {
				return nil, &LoadError{Line: i + 1, Err: err}
			}
			if _, taken := used[c]; taken {
				return nil, &LoadError{Line: i + 1, Err: fmt.Errorf("%w: %s", ErrDuplicateCoordinate, c)}
			}
			used[c] = struct{}{}
			coords = append(coords, c)
		}
		ships = append(ships, newShip(name, coords))
	}

	if len(ships) == 0 {
		return nil, &LoadError{Err: ErrEmptyFleet}
	}
	return &Fleet{ships: ships}, nil
}

// ReadLayout reads all lines of a layout resource.
// Read failures are reported as a LoadError wrapping ErrIO.
func ReadLayout(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("%w: %v", ErrIO, err)}
	}
	return lines, nil
}

// LoadFleetFS opens name in fsys, reads it and loads a fleet from it.
// The raw lines are returned alongside the fleet so a session can be rebuilt
// from them later.
func LoadFleetFS(fsys fs.FS, name string) (*Fleet, []string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, &LoadError{Err: fmt.Errorf("%w: %v", ErrIO, err)}
	}
	defer f.Close()

	lines, err := ReadLayout(f)
	if err != nil {
		return nil, nil, err
	}
	fleet, err := LoadFleet(lines)
	if err != nil {
		return nil, nil, err
	}
	return fleet, lines, nil
}
