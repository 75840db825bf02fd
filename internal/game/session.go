// internal/game/session.go
//
// Session is one game from load to victory. It owns exactly one Board.
// Restarting is done by discarding a session and creating a new one from a
// fresh load; a session's board is never reset in place.
//
// Sessions are shared between HTTP handlers, so every method takes the
// session lock before touching the board.

package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the state of a single game.
type Session struct {
	ID         string    // random UUID
	Layout     string    // layout name the fleet was loaded from
	Lines      []string  // raw layout lines, kept so the session can be rebuilt
	CreatedAt  time.Time // UTC
	FinishedAt time.Time // zero until victory

	mu        sync.Mutex
	board     *Board
	shots     []Coordinate // productive guesses in order
	persisted int          // leading shots known to be in durable storage
}

// NewSession loads a fleet from lines and starts a fresh board.
// A load failure returns the *LoadError and no session.
func NewSession(layout string, lines []string) (*Session, error) {
	fleet, err := LoadFleet(lines)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        uuid.NewString(),
		Layout:    layout,
		Lines:     append([]string(nil), lines...),
		CreatedAt: time.Now().UTC(),
		board:     NewBoard(fleet),
	}, nil
}

// RestoreSession rebuilds a session by loading lines and replaying shots in
// order. FinishedAt is left for the caller to restore. A shot that does not
// replay as a productive guess means the stored history does not belong to
// this layout.
func RestoreSession(id, layout string, lines []string, shots []Coordinate, createdAt time.Time) (*Session, error) {
	fleet, err := LoadFleet(lines)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        id,
		Layout:    layout,
		Lines:     append([]string(nil), lines...),
		CreatedAt: createdAt,
		board:     NewBoard(fleet),
	}
	for i, c := range shots {
		out := s.board.Resolve(c)
		if !out.Productive() {
			return nil, fmt.Errorf("restore %s: shot %d (%s) does not replay", id, i+1, c)
		}
		s.shots = append(s.shots, c)
	}
	s.persisted = len(s.shots)
	return s, nil
}

// Guess resolves a guess given as coordinate text.
// Productive guesses are appended to the shot history; a victory stamps
// FinishedAt.
func (s *Session) Guess(text string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.board.ResolveText(text)
	if err != nil {
		return Outcome{}, err
	}
	if out.Productive() {
		s.shots = append(s.shots, out.Coord)
	}
	if out.Kind == OutcomeVictory {
		s.FinishedAt = time.Now().UTC()
	}
	return out, nil
}

// View is a consistent copy of the session's board state.
type View struct {
	State  string
	Board  Snapshot
	Afloat []string
	Shots  int
}

// View captures the board under the session lock.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:  s.board.State(),
		Board:  s.board.Snapshot(),
		Afloat: s.board.Afloat(),
		Shots:  len(s.shots),
	}
}

// Shots returns the productive guesses in the order they were made.
func (s *Session) Shots() []Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Coordinate(nil), s.shots...)
}

// Persisted returns how many leading shots the store already holds. A store
// compares it with its own count to detect a stale copy.
func (s *Session) Persisted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// MarkPersisted records that the first n shots are stored.
func (s *Session) MarkPersisted(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.shots) {
		n = len(s.shots)
	}
	s.persisted = n
}

// IsWon reports whether the fleet is fully sunk.
func (s *Session) IsWon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.IsWon()
}
