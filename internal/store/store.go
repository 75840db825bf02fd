// Package store persists game sessions for the lifetime of the server.
package store

import (
	"context"
	"errors"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// ErrConflict is returned by Save when the stored shot history has moved on
// since the session was loaded. The caller should reload and retry.
var ErrConflict = errors.New("session was modified concurrently")

// Store defines the persistence interface for game sessions.
// Implementations are backed by memory or SQLite.
type Store interface {
	// Save persists or updates a session, including its shot history.
	// A session loaded before another Save on the same game gets ErrConflict.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete discards a session, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
