// internal/game/errors.go
//
// Error taxonomy for layout loading and guessing.
//
// Every failure produced while loading a layout is a *LoadError. A LoadError
// matches ErrInvalidLayout under errors.Is, so callers that only care about
// "the layout is bad" can test for that one condition, while errors.Is
// against the precise cause (ErrInvalidCoordinate, ErrDuplicateCoordinate,
// ErrIO, ...) still works for richer diagnostics.

package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLayout is the collapsed "this layout cannot be played" condition.
	ErrInvalidLayout = errors.New("invalid layout")

	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrDuplicateCoordinate = errors.New("duplicate coordinate")
	ErrEmptyShipName       = errors.New("empty ship name")
	ErrNoCoordinates       = errors.New("ship has no coordinates")
	ErrEmptyFleet          = errors.New("layout has no ships")

	// ErrIO marks a layout resource that could not be opened or read.
	ErrIO = errors.New("layout unreadable")
)

// LoadError reports why a layout was rejected.
// Line is 1-based; zero means the failure is not tied to a line.
type LoadError struct {
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid layout: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("invalid layout: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes every LoadError match ErrInvalidLayout.
func (e *LoadError) Is(target error) bool { return target == ErrInvalidLayout }
