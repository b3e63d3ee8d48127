// Package session derives the current user identity from the bearer token
// the backend issued. The console never verifies the token signature — it has
// no signing key and the backend re-checks every authenticated call — it only
// inspects the payload to decide what to render and where to route.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the single fixed key the token is persisted under.
const CookieName = "token"

var (
	ErrMalformed = errors.New("session: malformed token")
	ErrExpired   = errors.New("session: token expired")
)

// Claims is the decoded token payload.
type Claims struct {
	Username string
	Role     string
	Exp      int64
}

// Session is the ephemeral identity view derived from a token. A nil
// *Session means "absent".
type Session struct {
	Username string
	Role     string
}

// Decode parses the payload of raw without verifying the signature and
// returns its claims. It does not check expiry; see Derive.
func Decode(raw string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := &Claims{}
	if v, ok := claims["username"].(string); ok {
		out.Username = v
	}
	if v, ok := claims["role"].(string); ok {
		out.Role = v
	}
	switch v := claims["exp"].(type) {
	case float64:
		out.Exp = int64(v)
	case int64:
		out.Exp = v
	default:
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformed)
	}
	return out, nil
}

// Derive turns a raw token into a Session. It fails closed: any decode error
// or an expiry at or before now yields an error and no session. Validity
// compares exp in epoch seconds against wall-clock milliseconds.
func Derive(raw string, now time.Time) (*Session, error) {
	claims, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Exp*1000 <= now.UnixMilli() {
		return nil, ErrExpired
	}
	return &Session{Username: claims.Username, Role: claims.Role}, nil
}
