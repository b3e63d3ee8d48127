package web

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	loggingmw "github.com/shopfront/adminweb/pkg/middleware/logging"
)

// Register wires middleware and routes onto e. The session provider runs
// globally so every page sees the same derived session; the role guard wraps
// only the admin group.
func Register(e *echo.Echo, h *Handlers) error {
	renderer, err := NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(h.Log)

	reg := h.Prom
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(loggingmw.RequestLogger(h.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "adminweb",
		Registerer: reg,
	}))
	e.Use(h.Provider.Middleware())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echoprometheus.NewHandler())

	e.GET("/", h.Home)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/register", h.RegisterPage)
	e.POST("/register", h.Register)
	e.POST("/logout", h.Logout)

	admin := e.Group("/admin", RequireRole("admin"))
	admin.GET("", h.Dashboard)
	admin.GET("/products", h.AdminProducts)
	admin.POST("/products", h.CreateProduct)
	admin.POST("/products/:id", h.SaveProduct)
	admin.POST("/products/:id/edit", h.EditProduct)
	admin.POST("/products/:id/cancel", h.CancelEdit)
	admin.POST("/products/:id/delete", h.DeleteProduct)

	return nil
}
