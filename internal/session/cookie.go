package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieStore persists the bearer token in a single HttpOnly cookie. It is
// the console-side analog of the browser's local storage slot: one key,
// written on login, removed on logout or when derivation fails.
type CookieStore struct{}

func (CookieStore) newCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Read returns the persisted token, if any.
func (CookieStore) Read(c echo.Context) (string, bool) {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Write stores the token until exp.
func (s CookieStore) Write(c echo.Context, token string, exp time.Time) {
	c.SetCookie(s.newCookie(token, exp))
}

// Clear removes the token.
func (s CookieStore) Clear(c echo.Context) {
	c.SetCookie(s.newCookie("", time.Now().Add(-time.Hour)))
}
