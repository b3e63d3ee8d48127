package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shopfront/adminweb/internal/session"
)

type errorPage struct {
	Page
	Status  int
	Message string
}

// NewHTTPErrorHandler renders uncaught errors as an HTML page. Expected
// echo errors keep their status; anything else logs the cause and shows a
// generic 500 so backend details never leak into the page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprintf("%v", he.Message)
		} else {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		page := errorPage{
			Page:    Page{Title: http.StatusText(code), Session: session.From(c)},
			Status:  code,
			Message: msg,
		}
		if rerr := c.Render(code, "error", page); rerr != nil {
			_ = c.String(code, msg)
		}
	}
}
