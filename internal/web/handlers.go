// Package web renders the console's HTML surface: the navigation shell, the
// auth pages and the role-gated admin screens.
package web

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/shopfront/adminweb/internal/catalog"
	"github.com/shopfront/adminweb/internal/session"
	"github.com/shopfront/adminweb/internal/shopapi"
)

// Handlers bundles the dependencies every page handler shares.
type Handlers struct {
	API      *shopapi.Client
	Catalog  *catalog.Controller
	Provider *session.Provider
	Hub      *session.Hub
	Log      zerolog.Logger

	// Prom overrides the metrics registerer; nil means the default
	// registry. Tests pass a fresh one per app.
	Prom prometheus.Registerer
}

func (h *Handlers) base(c echo.Context, title string) Page {
	return Page{
		Title:   title,
		Session: session.From(c),
		Search:  c.QueryParam("search"),
	}
}
