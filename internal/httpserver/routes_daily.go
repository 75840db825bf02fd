// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Layout" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's daily game
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// Every player gets the same layout on a given UTC day, chosen
// deterministically from the catalog. A player who has already won today is
// told so instead of getting a new game. Guesses go through the normal
// /game/{id}/guess route; the token's day claim marks the session as daily.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// dailyLayout returns today's date key and layout name ("" if no layout in
// the catalog loads). Files that fail to load are never picked.
func (s *Server) dailyLayout(now time.Time) (date, name string) {
	date = daily.DateKey(now)
	names := s.layouts.Playable()
	if len(names) == 0 {
		return date, ""
	}
	return date, names[daily.LayoutIndex(now, s.dailyKey, len(names))]
}

// playedRes is returned by /daily/new when today's layout is already won.
type playedRes struct {
	Date   string `json:"date"`
	Played bool   `json:"played"`
}

// handleDailyNew creates or resumes the player's daily session.
// - Already won today (persisted result) → Played=true.
// - Unfinished session from earlier today → same game, fresh token.
// - Otherwise a new session on today's layout.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	player := s.ensurePlayerID(w, r)
	date, name := s.dailyLayout(time.Now())
	if name == "" {
		writeError(w, http.StatusServiceUnavailable, "no_layouts", "")
		return
	}

	played, err := s.daily.AlreadyPlayed(r.Context(), player, date)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(playedRes{Date: date, Played: true})
		return
	}

	key := player + "|" + date
	if sess := s.resumeDaily(r, key); sess != nil {
		s.respondSession(w, r, sess, player, date)
		return
	}

	sess, ok := s.startSession(w, r, name)
	if !ok {
		return
	}
	s.mu.Lock()
	s.pruneDailySessions(date)
	s.dailySessions[key] = sess.ID
	s.mu.Unlock()
	s.respondSession(w, r, sess, player, date)
}

// resumeDaily returns the player's session for key if it still exists.
func (s *Server) resumeDaily(r *http.Request, key string) *game.Session {
	s.mu.Lock()
	id, ok := s.dailySessions[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			hlog.FromRequest(r).Warn().Err(err).Str("gameId", id).Msg("resume daily")
		}
		s.mu.Lock()
		delete(s.dailySessions, key)
		s.mu.Unlock()
		return nil
	}
	return sess
}

// pruneDailySessions drops entries for days before today. Callers hold s.mu.
func (s *Server) pruneDailySessions(today string) {
	for key := range s.dailySessions {
		if i := strings.LastIndexByte(key, '|'); i >= 0 && key[i+1:] < today {
			delete(s.dailySessions, key)
		}
	}
}

// recordDailyWin stores the result of a won daily session. Best effort: a
// failure is logged, the guess response is unaffected.
func (s *Server) recordDailyWin(r *http.Request, sess *game.Session) {
	claims := claimsFrom(r.Context())
	if claims == nil || claims.Day == "" {
		return
	}
	res := daily.Result{
		PlayerID:  claims.Subject,
		Date:      claims.Day,
		Layout:    sess.Layout,
		Shots:     len(sess.Shots()),
		ElapsedMs: int(sess.FinishedAt.Sub(sess.CreatedAt).Milliseconds()),
	}
	if err := s.daily.InsertResult(r.Context(), res); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", sess.ID).Msg("insert daily result")
		return
	}
	s.mu.Lock()
	delete(s.dailySessions, claims.Subject+"|"+claims.Day)
	s.mu.Unlock()
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", "Dates look like 2006-01-02.")
		return
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
