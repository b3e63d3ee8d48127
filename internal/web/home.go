package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/adminweb/internal/shopapi"
)

type homePage struct {
	Page
	Loaded   bool
	Products []shopapi.Product
	Category string
}

// Home is the public storefront listing. The nav search box and an optional
// category parameter pass straight through to the backend's list filters.
// A failed fetch renders the loading/empty state, never a stale error page.
func (h *Handlers) Home(c echo.Context) error {
	page := homePage{
		Page:     h.base(c, "Home"),
		Category: c.QueryParam("category"),
	}

	products, err := h.API.ListProducts(c.Request().Context(), shopapi.ListQuery{
		Search:   page.Search,
		Category: page.Category,
	})
	if err != nil {
		h.Log.Warn().Err(err).Msg("product list fetch failed")
		return c.Render(http.StatusOK, "home", page)
	}

	page.Loaded = true
	page.Products = products
	return c.Render(http.StatusOK, "home", page)
}
