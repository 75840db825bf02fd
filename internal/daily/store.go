package daily

import (
	"context"
	"database/sql"
)

// Result is one player's win on the daily layout.
type Result struct {
	PlayerID  string `json:"playerId"`
	Date      string `json:"date"`
	Layout    string `json:"layout"`
	Shots     int    `json:"shots"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store records daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether playerID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=?",
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same player and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, date, layout, shots, elapsed_ms)
		VALUES(?,?,?,?,?)`, r.PlayerID, r.Date, r.Layout, r.Shots, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	PlayerID  string `json:"playerId"`
	Shots     int    `json:"shots"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the best results for date: fewest shots, then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, shots, elapsed_ms
		FROM daily_results
		WHERE date=?
		ORDER BY shots ASC, elapsed_ms ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Shots, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
