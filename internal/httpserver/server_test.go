package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/apps/go-server/internal/config"
	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/layouts"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

var testLayouts = fstest.MapFS{
	"tiny.txt": {Data: []byte("Patrol;A0\nSub;B1;B2\n")},
	"duo.txt":  {Data: []byte("Skiff;J9\nRaft;I0;I1\n")},
}

// shipCells lists every occupied cell of each test layout.
var shipCells = map[string][]string{
	"tiny.txt": {"A0", "B1", "B2"},
	"duo.txt":  {"J9", "I0", "I1"},
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultLayout: "tiny.txt",
		ServerSecret:  "test-secret",
		ClientOrigin:  "http://localhost:5173",
		DailySalt:     "test-salt",
		TokenTTL:      time.Hour,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, files fstest.MapFS) *Server {
	t.Helper()
	return newTestServerWith(t, cfg, files, store.NewSQLiteStore)
}

func newTestServerWith(t *testing.T, cfg *config.Config, files fstest.MapFS, open func(*sql.DB) store.Store) *Server {
	t.Helper()
	db, err := store.OpenDB(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cat := layouts.FromSources(layouts.Source{Name: "test", FS: files})
	return New(cfg, open(db), cat, daily.NewStore(db))
}

// staleStore behaves like another request saved first: any save carrying
// shots is rejected.
type staleStore struct{ store.Store }

func (s staleStore) Save(ctx context.Context, sess *game.Session) error {
	if len(sess.Shots()) > 0 {
		return store.ErrConflict
	}
	return s.Store.Save(ctx, sess)
}

// client drives the router and carries the player cookie between calls.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == playerCookieName {
			c.cookie = ck
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c *client) newGame(layout string) newGameRes {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/game/new", newGameReq{Layout: layout}, "")
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[newGameRes](c.t, rec)
}

func (c *client) guess(g newGameRes, coord string) guessRes {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/game/"+g.GameID+"/guess", guessReq{Coord: coord}, g.Token)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[guessRes](c.t, rec)
}

func TestHealthAndLayouts(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}

	rec := c.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/layouts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"layouts":["duo.txt","tiny.txt"],"default":"tiny.txt"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameToVictory(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}

	g := c.newGame("tiny.txt")
	assert.NotEmpty(t, g.GameID)
	assert.NotEmpty(t, g.Token)
	assert.Equal(t, "tiny.txt", g.Layout)
	assert.Equal(t, "playing", g.State)
	assert.Equal(t, []string{"Patrol", "Sub"}, g.Afloat)
	require.Len(t, g.Board, 10)
	assert.Empty(t, g.Date)
	assert.NotNil(t, c.cookie, "player cookie is set")

	res := c.guess(g, "A0")
	assert.Equal(t, "sunk", string(res.Outcome))
	assert.Equal(t, "Patrol", res.Ship)
	assert.Equal(t, "You sank a Patrol!", res.Message)
	assert.Equal(t, "P", res.Board[0][0])

	res = c.guess(g, "A0")
	assert.Equal(t, "already_resolved", string(res.Outcome))
	assert.Equal(t, msgAlreadyResolved, res.Message)

	res = c.guess(g, "C5")
	assert.Equal(t, "miss", string(res.Outcome))
	assert.Equal(t, msgMiss, res.Message)
	assert.Equal(t, "*", res.Board[5][2])

	res = c.guess(g, "B1")
	assert.Equal(t, "hit", string(res.Outcome))
	assert.Equal(t, msgHit, res.Message)
	assert.Equal(t, "X", res.Board[1][1])

	res = c.guess(g, "B2")
	assert.Equal(t, "victory", string(res.Outcome))
	assert.Equal(t, "Sub", res.Ship)
	assert.Equal(t, msgVictory, res.Message)
	assert.Equal(t, "won", res.State)
	assert.Empty(t, res.Afloat)

	res = c.guess(g, "J9")
	assert.Equal(t, "already_resolved", string(res.Outcome), "no shots land after victory")
	assert.Equal(t, "", res.Board[9][9])

	rec := c.do(http.MethodGet, "/game/"+g.GameID, nil, g.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[boardRes](t, rec)
	assert.Equal(t, "won", view.State)
	assert.Equal(t, 4, view.Shots)
	assert.Equal(t, "S", view.Board[1][1])
}

func TestNewGameLayoutErrors(t *testing.T) {
	files := fstest.MapFS{
		"tiny.txt": testLayouts["tiny.txt"],
		"bad.txt":  {Data: []byte("Ship;Z9\n")},
		"dup.txt":  {Data: []byte("A;A0\nB;A0\n")},
	}
	c := &client{t: t, h: newTestServer(t, testConfig(), files).Router()}

	for _, name := range []string{"bad.txt", "dup.txt", "missing.txt", "../tiny.txt"} {
		rec := c.do(http.MethodPost, "/game/new", newGameReq{Layout: name}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, name)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "invalid_layout", body["error"], name)
		assert.Equal(t, msgInvalidLayout, body["message"], name)
	}

	rec := c.do(http.MethodPost, "/game/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, "empty request uses the default layout")
	assert.Equal(t, "tiny.txt", decode[newGameRes](t, rec).Layout)
}

func TestNewGameRejectsMalformedBody(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}

	req := httptest.NewRequest(http.MethodPost, "/game/new", bytes.NewBufferString(`{"layout":`))
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_json", decode[map[string]string](t, rec)["error"])

	req = httptest.NewRequest(http.MethodPost, "/game/new", bytes.NewBufferString(`["tiny.txt"]`))
	rec = httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "wrong JSON shape")
}

func TestNewGameWithoutDefault(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLayout = ""
	c := &client{t: t, h: newTestServer(t, cfg, testLayouts).Router()}

	rec := c.do(http.MethodPost, "/game/new", newGameReq{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgMissingLayout, decode[map[string]string](t, rec)["message"])
}

func TestGuessRejectsBadInput(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}
	g := c.newGame("tiny.txt")

	for _, coord := range []string{"K1", "a0", "A10", "", " A0"} {
		rec := c.do(http.MethodPost, "/game/"+g.GameID+"/guess", guessReq{Coord: coord}, g.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, coord)
		assert.Equal(t, "invalid_coordinate", decode[map[string]string](t, rec)["error"], coord)
	}

	req := httptest.NewRequest(http.MethodPost, "/game/"+g.GameID+"/guess", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+g.Token)
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/game/"+g.GameID, nil, g.Token)
	assert.Equal(t, 0, decode[boardRes](t, rec).Shots, "rejected guesses leave the board untouched")
}

func TestSessionTokenRequired(t *testing.T) {
	srv := newTestServer(t, testConfig(), testLayouts)
	c := &client{t: t, h: srv.Router()}
	a := c.newGame("tiny.txt")
	b := c.newGame("duo.txt")

	rec := c.do(http.MethodGet, "/game/"+a.GameID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[map[string]string](t, rec)["error"])

	rec = c.do(http.MethodGet, "/game/"+a.GameID, nil, b.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "token for another game")
	assert.Equal(t, "invalid_token", decode[map[string]string](t, rec)["error"])

	rec = c.do(http.MethodGet, "/game/"+a.GameID, nil, "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, _, err := signSessionToken(srv.tokenKey, "p", a.GameID, "", -time.Minute)
	require.NoError(t, err)
	rec = c.do(http.MethodGet, "/game/"+a.GameID, nil, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "expired token")

	forged, _, err := signSessionToken([]byte("other-key"), "p", a.GameID, "", time.Hour)
	require.NoError(t, err)
	rec = c.do(http.MethodGet, "/game/"+a.GameID, nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong signing key")
}

func TestDeleteAndRestart(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}
	g := c.newGame("tiny.txt")
	c.guess(g, "A0")

	rec := c.do(http.MethodDelete, "/game/"+g.GameID, nil, g.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/game/"+g.GameID, nil, g.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = c.do(http.MethodDelete, "/game/"+g.GameID, nil, g.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	fresh := c.newGame("tiny.txt")
	assert.NotEqual(t, g.GameID, fresh.GameID)
	assert.Equal(t, 0, fresh.Shots)
	assert.Equal(t, []string{"Patrol", "Sub"}, fresh.Afloat)
}

func TestDailyFlow(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}

	rec := c.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	g := decode[newGameRes](t, rec)
	require.NotNil(t, c.cookie)
	player := c.cookie.Value
	assert.Equal(t, daily.DateKey(time.Now()), g.Date)
	require.Contains(t, shipCells, g.Layout)

	rec = c.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, g.GameID, decode[newGameRes](t, rec).GameID, "unfinished daily game is resumed")

	c.guess(g, "E5")
	var last guessRes
	for _, cell := range shipCells[g.Layout] {
		last = c.guess(g, cell)
	}
	require.Equal(t, "victory", string(last.Outcome))

	rec = c.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"`+g.Date+`","played":true}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/daily/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	lb := decode[lbRes](t, rec)
	assert.Equal(t, g.Date, lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, player, lb.Top[0].PlayerID)
	assert.Equal(t, 4, lb.Top[0].Shots)

	other := &client{t: t, h: c.h}
	rec = other.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, g.Layout, decode[newGameRes](t, rec).Layout, "everyone gets the same layout")
}

func TestGuessConflictIsNotReported(t *testing.T) {
	srv := newTestServerWith(t, testConfig(), testLayouts, func(db *sql.DB) store.Store {
		return staleStore{store.NewSQLiteStore(db)}
	})
	c := &client{t: t, h: srv.Router()}

	rec := c.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	g := decode[newGameRes](t, rec)

	for _, cell := range shipCells[g.Layout] {
		rec = c.do(http.MethodPost, "/game/"+g.GameID+"/guess", guessReq{Coord: cell}, g.Token)
		assert.Equal(t, http.StatusConflict, rec.Code, cell)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "conflict", body["error"])
		assert.Empty(t, body["outcome"])
	}

	rec = c.do(http.MethodGet, "/game/"+g.GameID, nil, g.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[boardRes](t, rec).Shots)

	rec = c.do(http.MethodGet, "/daily/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[lbRes](t, rec).Top, "a win that was never stored is not ranked")
}

func TestDailySkipsInvalidLayouts(t *testing.T) {
	files := fstest.MapFS{
		"aaa.txt":  {Data: []byte("Ship;Z9\n")},
		"bbb.txt":  {Data: []byte("A;A0\nB;A0\n")},
		"tiny.txt": testLayouts["tiny.txt"],
	}
	c := &client{t: t, h: newTestServer(t, testConfig(), files).Router()}

	rec := c.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "tiny.txt", decode[newGameRes](t, rec).Layout)

	broken := fstest.MapFS{"aaa.txt": files["aaa.txt"], "bbb.txt": files["bbb.txt"]}
	c = &client{t: t, h: newTestServer(t, testConfig(), broken).Router()}
	rec = c.do(http.MethodPost, "/daily/new", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDailySessionsPruneOldDays(t *testing.T) {
	srv := newTestServer(t, testConfig(), testLayouts)
	srv.dailySessions["someone|2000-01-01"] = "old-game"
	c := &client{t: t, h: srv.Router()}

	rec := c.do(http.MethodPost, "/daily/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[newGameRes](t, rec)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.NotContains(t, srv.dailySessions, "someone|2000-01-01")
	assert.Equal(t, map[string]string{c.cookie.Value + "|" + g.Date: g.GameID}, srv.dailySessions)
}

func TestPlayerCookieSecurity(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}
	c.newGame("tiny.txt")
	require.NotNil(t, c.cookie)
	assert.False(t, c.cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.cookie.SameSite)

	cfg := testConfig()
	cfg.SecureCookies = true
	c = &client{t: t, h: newTestServer(t, cfg, testLayouts).Router()}
	c.newGame("tiny.txt")
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.Secure)
	assert.True(t, c.cookie.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.cookie.SameSite)
}

func TestDailyWinOnlyForDailyTokens(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}
	g := c.newGame("tiny.txt")
	for _, cell := range shipCells["tiny.txt"] {
		c.guess(g, cell)
	}

	rec := c.do(http.MethodGet, "/daily/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[lbRes](t, rec).Top)
}

func TestLeaderboardDate(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}

	rec := c.do(http.MethodGet, "/daily/leaderboard?date=2026-01-02", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2026-01-02","top":[]}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/daily/leaderboard?date=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyWithoutLayouts(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), fstest.MapFS{}).Router()}
	rec := c.do(http.MethodPost, "/daily/new", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	c := &client{t: t, h: newTestServer(t, testConfig(), testLayouts).Router()}
	rec := c.do(http.MethodOptions, "/game/new", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
