package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/adminweb/internal/session"
)

// RequireRole guards a view behind a role. It runs once on entry and only
// redirects; the decoded payload is not forwarded beyond what the session
// provider already put in context. No token, or one the provider rejected,
// sends the visitor to the login page; a valid session with the wrong role
// goes back to the home view.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := session.From(c)
			if sess == nil {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if sess.Role != role {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}
