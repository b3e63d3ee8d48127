package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/adminweb/internal/catalog"
	"github.com/shopfront/adminweb/internal/shopapi"
)

// Dashboard is the admin landing page. The guard has already vetted the role.
func (h *Handlers) Dashboard(c echo.Context) error {
	return c.Render(http.StatusOK, "admin_dashboard", h.base(c, "Admin Dashboard"))
}

type productRow struct {
	Product shopapi.Product
	Editing bool
	Draft   catalog.Draft
}

type productsPage struct {
	Page
	Loaded   bool
	Rows     []productRow
	NewDraft catalog.Draft
}

// AdminProducts refetches the collection on every view activation and
// renders it alongside whatever draft state the controller is holding.
func (h *Handlers) AdminProducts(c echo.Context) error {
	loaded := true
	if err := h.Catalog.Load(c.Request().Context(), shopapi.ListQuery{}); err != nil {
		h.Log.Warn().Err(err).Msg("product list fetch failed")
		loaded = false
	}
	return h.renderProducts(c, http.StatusOK, loaded, "")
}

type productForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
	Stock       string `form:"stock"`
	Category    string `form:"category"`
	ImageURL    string `form:"image_url"`
}

func (f productForm) draft() catalog.Draft {
	return catalog.Draft{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Stock:       f.Stock,
		Category:    f.Category,
		ImageURL:    f.ImageURL,
	}
}

// CreateProduct submits the add form. Success follows post-redirect-get;
// failure re-renders in place with the message and the draft preserved.
func (h *Handlers) CreateProduct(c echo.Context) error {
	var form productForm
	if err := c.Bind(&form); err != nil {
		return h.renderProducts(c, http.StatusBadRequest, true, "invalid form submission")
	}

	token, _ := h.Provider.Token(c)
	if err := h.Catalog.Create(c.Request().Context(), token, form.draft()); err != nil {
		return h.renderOpError(c, err, "Failed to add product")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

// EditProduct snapshots the product into a draft and enters edit mode.
func (h *Handlers) EditProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	h.Catalog.BeginEdit(id)
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

// CancelEdit discards the draft without contacting the backend.
func (h *Handlers) CancelEdit(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	h.Catalog.CancelEdit(id)
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

// SaveProduct submits the edit draft. On failure the row stays in edit mode
// with the submitted values so the operator can retry or cancel.
func (h *Handlers) SaveProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	var form productForm
	if err := c.Bind(&form); err != nil {
		return h.renderProducts(c, http.StatusBadRequest, true, "invalid form submission")
	}

	token, _ := h.Provider.Token(c)
	if err := h.Catalog.SaveEdit(c.Request().Context(), token, id, form.draft()); err != nil {
		return h.renderOpError(c, err, "Failed to update product")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

// DeleteProduct removes the product; a failure leaves the list untouched.
func (h *Handlers) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	token, _ := h.Provider.Token(c)
	if err := h.Catalog.Delete(c.Request().Context(), token, id); err != nil {
		return h.renderOpError(c, err, "Failed to delete product")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

func (h *Handlers) renderOpError(c echo.Context, err error, generic string) error {
	if errors.Is(err, catalog.ErrValidation) {
		return h.renderProducts(c, http.StatusBadRequest, true, err.Error())
	}
	status, msg := surface(err, generic)
	return h.renderProducts(c, status, true, msg)
}

func (h *Handlers) renderProducts(c echo.Context, status int, loaded bool, msg string) error {
	editing := h.Catalog.EditingID()

	var rows []productRow
	for _, p := range h.Catalog.Products() {
		row := productRow{Product: p}
		if p.ID == editing {
			if d, ok := h.Catalog.EditDraft(p.ID); ok {
				row.Editing = true
				row.Draft = d
			}
		}
		rows = append(rows, row)
	}

	page := productsPage{
		Page:     h.base(c, "Admin Products"),
		Loaded:   loaded,
		Rows:     rows,
		NewDraft: h.Catalog.NewDraft(),
	}
	page.Error = msg
	return c.Render(status, "admin_products", page)
}
