// internal/httpserver/token.go
//
// Session tokens bind a player to one game. They are HS256 JWTs:
//   sub  player id (same value as the player cookie)
//   gid  game id the token grants access to
//   day  daily date key, only for daily sessions
//   exp  expiry, configured by TOKEN_TTL_HOURS
//
// The signing key is derived from SERVER_SECRET (config.DeriveKey).

package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	GameID string `json:"gid"`
	Day    string `json:"day,omitempty"`
	jwt.RegisteredClaims
}

var errTokenGame = errors.New("token is for a different game")

// signSessionToken issues a token for playerID on gameID.
func signSessionToken(key []byte, playerID, gameID, day string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		GameID: gameID,
		Day:    day,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(key)
	return ss, exp, err
}

// parseSessionToken verifies tokenStr and checks it grants gameID.
func parseSessionToken(key []byte, tokenStr, gameID string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.GameID != gameID {
		return nil, errTokenGame
	}
	return claims, nil
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
