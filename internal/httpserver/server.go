// internal/httpserver/server.go
//
// HTTP server wiring for the Battleship backend. This is the adapter between
// the game engine and an external presentation layer: it carries board
// snapshots, outcomes and player-facing messages as JSON and holds no game
// logic of its own.
//
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/layouts".
//   - Game endpoints: POST /game/new, then token-gated GET/DELETE /game/{id}
//     and POST /game/{id}/guess.
//   - Daily layout endpoints: mounted under /daily.
//
// Notes:
//   - Restarting a game is DELETE /game/{id} followed by POST /game/new; a
//     session is never reset in place.
//   - Every layout failure is reported with the same player-facing message;
//     the precise cause only goes to the log.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/config"
	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/layouts"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

// Player-facing messages.
const (
	msgInvalidLayout   = "Please enter a valid file."
	msgMissingLayout   = "Please enter a filename!"
	msgAlreadyResolved = "Location has already been shot at!"
	msgVictory         = "Congratulations! You sank all enemy ships."
	msgHit             = "Hit!"
	msgMiss            = "Miss."
	msgConflict        = "The game changed while your shot was in flight. Reload and try again."
)

// Server bundles router, session store, layout catalog and daily results.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	store    store.Store
	layouts  *layouts.Catalog
	daily    *daily.Store
	tokenKey []byte
	dailyKey []byte

	mu            sync.Mutex        // guards dailySessions
	dailySessions map[string]string // player|date → game id
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, st store.Store, cat *layouts.Catalog, ds *daily.Store) *Server {
	s := &Server{
		r:             chi.NewRouter(),
		cfg:           cfg,
		store:         st,
		layouts:       cat,
		daily:         ds,
		tokenKey:      cfg.DeriveKey("session-token"),
		dailyKey:      cfg.DeriveKey("daily/" + cfg.DailySalt),
		dailySessions: make(map[string]string),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(hlog.AccessHandler(accessLog))   // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"battleship-go","endpoints":["/health","/layouts","POST /game/new","POST /game/{id}/guess","/daily/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/layouts", s.handleLayouts)

	// --- game ---
	s.r.Post("/game/new", s.handleNewGame)
	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireSessionToken())
		r.Get("/", s.handleGetGame)
		r.Delete("/", s.handleDeleteGame)
		r.Post("/guess", s.handleGuess)
	})

	// --- daily ---
	s.mountDaily(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ payloads -----------------------------------

// boardRes is the snapshot part shared by every game response.
type boardRes struct {
	GameID string     `json:"gameId"`
	Layout string     `json:"layout"`
	State  string     `json:"state"` // "playing" | "won"
	Board  [][]string `json:"board"` // [row][col]: "", "*", "X" or a ship glyph
	Afloat []string   `json:"afloat"`
	Shots  int        `json:"shots"`
}

func newBoardRes(sess *game.Session) boardRes {
	v := sess.View()
	return boardRes{
		GameID: sess.ID,
		Layout: sess.Layout,
		State:  v.State,
		Board:  v.Board.Rows(),
		Afloat: v.Afloat,
		Shots:  v.Shots,
	}
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Layout string `json:"layout"` // empty → DEFAULT_LAYOUT
}
type newGameRes struct {
	boardRes
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Date      string    `json:"date,omitempty"` // daily sessions only
}

// guessReq/Res payloads for POST /game/{id}/guess.
type guessReq struct {
	Coord string `json:"coord"`
}
type guessRes struct {
	boardRes
	Outcome game.OutcomeKind `json:"outcome"`
	Coord   string           `json:"coord"`
	Ship    string           `json:"ship,omitempty"`
	Message string           `json:"message"`
}

// ------------------------------ handlers -----------------------------------

// handleLayouts lists every layout the catalog can serve.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"layouts": s.layouts.Names(),
		"default": s.cfg.DefaultLayout,
	})
}

// handleNewGame loads the requested layout into a fresh session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}

	name := req.Layout
	if name == "" {
		name = s.cfg.DefaultLayout
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing_layout", msgMissingLayout)
		return
	}

	player := s.ensurePlayerID(w, r)
	sess, ok := s.startSession(w, r, name)
	if !ok {
		return
	}
	s.respondSession(w, r, sess, player, "")
}

// startSession loads name and saves a new session. On failure it has already
// written the response.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, name string) (*game.Session, bool) {
	logger := hlog.FromRequest(r)

	_, lines, err := s.layouts.Load(name)
	if err != nil {
		logger.Warn().Err(err).Str("layout", name).Msg("layout rejected")
		writeError(w, http.StatusUnprocessableEntity, "invalid_layout", msgInvalidLayout)
		return nil, false
	}
	sess, err := game.NewSession(name, lines)
	if err != nil {
		logger.Warn().Err(err).Str("layout", name).Msg("layout rejected")
		writeError(w, http.StatusUnprocessableEntity, "invalid_layout", msgInvalidLayout)
		return nil, false
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		logger.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return nil, false
	}
	logger.Info().Str("gameId", sess.ID).Str("layout", name).Msg("game started")
	return sess, true
}

// respondSession issues a token for sess and writes the new-game response.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, sess *game.Session, player, day string) {
	tok, exp, err := signSessionToken(s.tokenKey, player, sess.ID, day, s.cfg.TokenTTL)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed", "")
		return
	}
	_ = json.NewEncoder(w).Encode(newGameRes{
		boardRes:  newBoardRes(sess),
		Token:     tok,
		ExpiresAt: exp.UTC(),
		Date:      day,
	})
}

// loadSession fetches the {id} session. On failure it has already written the
// response.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return nil, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", id).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed", "")
		return nil, false
	}
	return sess, true
}

// handleGetGame returns the current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(newBoardRes(sess))
}

// handleDeleteGame discards a session.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", id).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "delete_failed", "")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleGuess resolves one guess, persists the session and, for a daily
// victory, records the result.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	out, err := sess.Guess(req.Coord)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinate", "Coordinates look like B7: a letter A-J and a digit 0-9.")
		return
	}
	if out.Productive() {
		err := s.store.Save(r.Context(), sess)
		if errors.Is(err, store.ErrConflict) {
			hlog.FromRequest(r).Info().Err(err).Str("gameId", sess.ID).Msg("stale guess")
			writeError(w, http.StatusConflict, "conflict", msgConflict)
			return
		}
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("gameId", sess.ID).Msg("save session")
			writeError(w, http.StatusInternalServerError, "save_failed", "")
			return
		}
	}

	hlog.FromRequest(r).Debug().
		Str("gameId", sess.ID).
		Stringer("coord", out.Coord).
		Str("outcome", string(out.Kind)).
		Msg("guess")

	if out.Kind == game.OutcomeVictory {
		s.recordDailyWin(r, sess)
	}

	_ = json.NewEncoder(w).Encode(guessRes{
		boardRes: newBoardRes(sess),
		Outcome:  out.Kind,
		Coord:    out.Coord.String(),
		Ship:     out.Ship,
		Message:  outcomeMessage(out),
	})
}

// outcomeMessage is the player-facing text for an outcome.
func outcomeMessage(out game.Outcome) string {
	switch out.Kind {
	case game.OutcomeAlreadyResolved:
		return msgAlreadyResolved
	case game.OutcomeVictory:
		return msgVictory
	case game.OutcomeSunk:
		return "You sank a " + out.Ship + "!"
	case game.OutcomeHit:
		return msgHit
	default:
		return msgMiss
	}
}

// writeError writes {"error":code,"message":msg} with status.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	body := map[string]string{"error": code}
	if msg != "" {
		body["message"] = msg
	}
	_ = json.NewEncoder(w).Encode(body)
}
