package session

import (
	"time"

	"github.com/labstack/echo/v4"
)

const ctxKey = "session"

// Provider is the single authorization context for the whole console. Every
// request derives the session exactly once here; handlers and guards read the
// result with From instead of re-decoding the token themselves.
type Provider struct {
	Store CookieStore
	Now   func() time.Time
}

func NewProvider() *Provider {
	return &Provider{Now: time.Now}
}

// Middleware derives the session from the persisted token and stashes it in
// the request context. A token that is present but undecodable or expired is
// proactively cleared so later requests start from a clean "absent" state.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := p.Store.Read(c)
			if !ok {
				return next(c)
			}
			sess, err := Derive(raw, p.Now())
			if err != nil {
				p.Store.Clear(c)
				return next(c)
			}
			c.Set(ctxKey, sess)
			return next(c)
		}
	}
}

// Token returns the raw persisted token for attaching to backend calls.
func (p *Provider) Token(c echo.Context) (string, bool) {
	return p.Store.Read(c)
}

// From returns the session derived for this request, or nil when absent.
func From(c echo.Context) *Session {
	sess, _ := c.Get(ctxKey).(*Session)
	return sess
}
