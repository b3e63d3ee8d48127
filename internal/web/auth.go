package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/adminweb/internal/session"
	"github.com/shopfront/adminweb/internal/shopapi"
)

type loginForm struct {
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type registerForm struct {
	Username string `form:"username" validate:"required,min=2"`
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type loginPage struct {
	Page
	Email string
}

type registerPage struct {
	Page
	Username string
	Email    string
}

func (h *Handlers) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", loginPage{
		Page: h.base(c, "Log In"),
	})
}

// Login exchanges the form credentials for a token, persists it and
// broadcasts the auth change. A rejected login re-renders the form with the
// backend's message verbatim.
func (h *Handlers) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, form.Email, "invalid form submission")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, form.Email, err.Error())
	}

	token, err := h.API.Login(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		status, msg := surface(err, "Login failed")
		return h.renderLogin(c, status, form.Email, msg)
	}

	exp := time.Time{}
	if claims, err := session.Decode(token); err == nil {
		exp = time.Unix(claims.Exp, 0)
	}
	h.Provider.Store.Write(c, token, exp)

	sess, _ := session.Derive(token, time.Now())
	username := ""
	if sess != nil {
		username = sess.Username
	}
	h.Hub.Broadcast(session.Event{Type: session.EventLogin, Username: username})

	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register", registerPage{
		Page: h.base(c, "Sign Up"),
	})
}

// Register creates the account and sends the visitor to the login page.
func (h *Handlers) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return h.renderRegister(c, http.StatusBadRequest, form, "invalid form submission")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderRegister(c, http.StatusBadRequest, form, err.Error())
	}

	if err := h.API.Register(c.Request().Context(), form.Username, form.Email, form.Password); err != nil {
		status, msg := surface(err, "Registration failed")
		return h.renderRegister(c, status, form, msg)
	}

	return c.Redirect(http.StatusSeeOther, "/login")
}

// Logout clears the persisted token, broadcasts the auth change and lands on
// the login page. The next derivation anywhere reports "absent".
func (h *Handlers) Logout(c echo.Context) error {
	username := ""
	if sess := session.From(c); sess != nil {
		username = sess.Username
	}
	h.Provider.Store.Clear(c)
	h.Hub.Broadcast(session.Event{Type: session.EventLogout, Username: username})
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handlers) renderLogin(c echo.Context, status int, email, msg string) error {
	page := loginPage{Page: h.base(c, "Log In"), Email: email}
	page.Error = msg
	return c.Render(status, "login", page)
}

func (h *Handlers) renderRegister(c echo.Context, status int, form registerForm, msg string) error {
	page := registerPage{Page: h.base(c, "Sign Up"), Username: form.Username, Email: form.Email}
	page.Error = msg
	return c.Render(status, "register", page)
}

// surface maps a client error to a response status and a user-visible
// message: backend rejections verbatim, transport failures generically.
func surface(err error, generic string) (int, string) {
	var apiErr *shopapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Message
	}
	return http.StatusBadGateway, generic + ": the server could not be reached"
}
