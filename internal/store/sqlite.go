// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
//
// A session is stored as its layout text plus the ordered list of productive
// shots; Get rebuilds the board by replaying those shots on a fresh load. The
// engine is deterministic, so the rebuilt session is indistinguishable from
// the one that was saved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store over an already migrated database.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

// Save appends the shots made since the session was loaded and updates the
// game row. If the stored history no longer matches what this copy was loaded
// with, nothing is written and ErrConflict is returned.
func (s *sqliteStore) Save(ctx context.Context, sess *game.Session) error {
	view := sess.View()
	shots := sess.Shots()

	var finished any
	if !sess.FinishedAt.IsZero() {
		finished = sess.FinishedAt.Format(time.RFC3339Nano)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var stored int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM shots WHERE game_id=?`, sess.ID).Scan(&stored); err != nil {
		return fmt.Errorf("count shots %s: %w", sess.ID, err)
	}
	if stored != sess.Persisted() {
		return fmt.Errorf("save %s: %d shots stored, session loaded with %d: %w",
			sess.ID, stored, sess.Persisted(), ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO games (id, layout, lines, status, created_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET status=excluded.status, finished_at=excluded.finished_at`,
		sess.ID, sess.Layout, strings.Join(sess.Lines, "\n"), view.State,
		sess.CreatedAt.Format(time.RFC3339Nano), finished,
	); err != nil {
		return fmt.Errorf("upsert game %s: %w", sess.ID, err)
	}

	for i := stored; i < len(shots); i++ {
		if _, err := tx.ExecContext(ctx, `INSERT INTO shots (game_id, seq, coord) VALUES (?, ?, ?)`,
			sess.ID, i+1, shots[i].String()); err != nil {
			return fmt.Errorf("insert shot %s#%d: %w", sess.ID, i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sess.MarkPersisted(len(shots))
	return nil
}

// Get loads the game row and its shots, then replays them.
func (s *sqliteStore) Get(ctx context.Context, id string) (*game.Session, error) {
	var layout, lines, created string
	var finished sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT layout, lines, created_at, finished_at FROM games WHERE id=?`, id,
	).Scan(&layout, &lines, &created, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT coord FROM shots WHERE game_id=? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("load shots %s: %w", id, err)
	}
	var shots []game.Coordinate
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			rows.Close()
			return nil, err
		}
		c, err := game.ParseCoordinate(text)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("load shots %s: %w", id, err)
		}
		shots = append(shots, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sess, err := game.RestoreSession(id, layout, strings.Split(lines, "\n"), shots, mustParse(created))
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		sess.FinishedAt = mustParse(finished.String)
	}
	return sess, nil
}

// Delete removes the game and its shots.
func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shots WHERE game_id=?`, id); err != nil {
		return fmt.Errorf("delete shots %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
