// internal/game/engine.go
//
// Core game engine for a single Battleship board.
// Responsibilities:
//   - Hold the fleet and the hit/miss sets for one session.
//   - Resolve guesses: each cell goes Unresolved → Hit or Miss exactly once.
//   - Track afloat ships and the playing → won transition.
//   - Produce a render-agnostic snapshot.
//
// Notes:
//   - A Board takes ownership of the Fleet it is built from; ships are mutated
//     as they are hit, so a fleet must never be shared between boards.
//   - Once won, the board is read-only: every Resolve returns
//     OutcomeAlreadyResolved without touching state.
//   - Board is not safe for concurrent use; Session serializes access.
package game

// Board is the game state for one session.
type Board struct {
	fleet  *Fleet
	hits   map[Coordinate]struct{}
	misses map[Coordinate]struct{}
	afloat []*Ship // fleet order, sunk ships removed
	won    bool
}

// NewBoard starts a game over fleet with every cell unresolved.
func NewBoard(fleet *Fleet) *Board {
	return &Board{
		fleet:  fleet,
		hits:   make(map[Coordinate]struct{}),
		misses: make(map[Coordinate]struct{}),
		afloat: fleet.Ships(),
	}
}

// Resolve applies a guess at c and reports what happened.
//
// Order of checks:
//  1. already hit/missed, or game won → OutcomeAlreadyResolved, no mutation
//  2. owned by an afloat ship → hit; sunk if that was its last cell;
//     victory if it was the last afloat ship
//  3. otherwise → miss
func (b *Board) Resolve(c Coordinate) Outcome {
	// Off-board values cannot come from ParseCoordinate; treat them as no-ops.
	if b.won || !c.Valid() || b.resolved(c) {
		return Outcome{Kind: OutcomeAlreadyResolved, Coord: c}
	}

	for i, ship := range b.afloat {
		if !ship.Occupies(c) {
			continue
		}
		b.hits[c] = struct{}{}
		ship.RecordHit(c)
		if !ship.IsSunk() {
			return Outcome{Kind: OutcomeHit, Coord: c}
		}
		b.afloat = append(b.afloat[:i:i], b.afloat[i+1:]...)
		if len(b.afloat) == 0 {
			b.won = true
			return Outcome{Kind: OutcomeVictory, Coord: c, Ship: ship.Name()}
		}
		return Outcome{Kind: OutcomeSunk, Coord: c, Ship: ship.Name()}
	}

	b.misses[c] = struct{}{}
	return Outcome{Kind: OutcomeMiss, Coord: c}
}

// ResolveText parses text as a coordinate and resolves it.
func (b *Board) ResolveText(text string) (Outcome, error) {
	c, err := ParseCoordinate(text)
	if err != nil {
		return Outcome{}, err
	}
	return b.Resolve(c), nil
}

// Snapshot renders every cell.
// Sunk ships show their glyph on all of their cells; afloat ships show "X"
// only where hit; misses show "*"; everything else is empty.
func (b *Board) Snapshot() Snapshot {
	var s Snapshot
	for _, ship := range b.fleet.ships {
		if ship.IsSunk() {
			g := ship.Glyph()
			for _, c := range ship.coords {
				s[c.Row][c.Col] = Cell{Kind: CellSunk, Glyph: g}
			}
			continue
		}
		for _, c := range ship.Hits() {
			s[c.Row][c.Col] = Cell{Kind: CellHitPending}
		}
	}
	for c := range b.misses {
		s[c.Row][c.Col] = Cell{Kind: CellMiss}
	}
	return s
}

// State reports "playing" or "won".
func (b *Board) State() string {
	if b.won {
		return "won"
	}
	return "playing"
}

// IsWon is true once every ship is sunk.
func (b *Board) IsWon() bool { return b.won }

// IsResolved reports whether c has already been hit or missed.
func (b *Board) IsResolved(c Coordinate) bool { return b.resolved(c) }

// Afloat lists the names of ships not yet sunk, in layout order.
func (b *Board) Afloat() []string {
	out := make([]string, 0, len(b.afloat))
	for _, s := range b.afloat {
		out = append(out, s.Name())
	}
	return out
}

// Remaining is the number of ships still afloat.
func (b *Board) Remaining() int { return len(b.afloat) }

// Shots is the number of resolved cells.
func (b *Board) Shots() int { return len(b.hits) + len(b.misses) }

// Fleet exposes the board's fleet (read-only use).
func (b *Board) Fleet() *Fleet { return b.fleet }

func (b *Board) resolved(c Coordinate) bool {
	if _, ok := b.hits[c]; ok {
		return true
	}
	_, ok := b.misses[c]
	return ok
}
