package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/adminweb/internal/catalog"
	"github.com/shopfront/adminweb/internal/session"
	"github.com/shopfront/adminweb/internal/shopapi"
	"github.com/shopfront/adminweb/internal/shopapi/shopapitest"
)

type testApp struct {
	e       *echo.Echo
	h       *Handlers
	backend *shopapitest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	backend := shopapitest.NewServer(t)
	api := shopapi.NewClient(backend.URL, 5*time.Second)
	ctl := catalog.NewController(api)

	hub := session.NewHub()
	hub.Subscribe(func(ev session.Event) {
		if ev.Type == session.EventLogout {
			ctl.Reset()
		}
	})

	h := &Handlers{
		API:      api,
		Catalog:  ctl,
		Provider: session.NewProvider(),
		Hub:      hub,
		Log:      zerolog.Nop(),
		Prom:     prometheus.NewRegistry(),
	}

	e := echo.New()
	require.NoError(t, Register(e, h))
	return &testApp{e: e, h: h, backend: backend}
}

func (app *testApp) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token := app.backend.IssueToken(t, "boss", "admin", time.Now().Add(time.Hour))
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func (app *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	return rec
}

func TestNavShellReflectsSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Login")
	require.Contains(t, rec.Body.String(), "Sign Up")

	rec = app.get("/", app.adminCookie(t))
	require.Contains(t, rec.Body.String(), "Hi, boss")
	require.Contains(t, rec.Body.String(), "Logout")
	require.NotContains(t, rec.Body.String(), ">Sign Up<")
}

func TestLoginSetsCookieAndRedirectsHome(t *testing.T) {
	app := newTestApp(t)
	app.backend.SeedUser(t, "alice", "alice@example.com", "password1", "admin")

	rec := app.postForm("/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
}

func TestLoginRejectionRendersBackendMessage(t *testing.T) {
	app := newTestApp(t)
	app.backend.SeedUser(t, "alice", "alice@example.com", "password1", "admin")

	rec := app.postForm("/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong-password"},
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid email or password")
	require.Contains(t, rec.Body.String(), `value="alice@example.com"`, "typed email survives the failure")
	require.Empty(t, rec.Result().Cookies())
}

func TestLoginValidationShortCircuits(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/login", url.Values{
		"email":    {"not-an-email"},
		"password": {"password1"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email must be a valid email")
}

func TestRegisterThenRedirectToLogin(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{
		"username": {"bob"},
		"email":    {"bob@example.com"},
		"password": {"password1"},
	}
	rec := app.postForm("/register", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.postForm("/register", form)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "user already exists")
}

func TestLogoutClearsEverything(t *testing.T) {
	app := newTestApp(t)
	p := app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Price: 10})
	ck := app.adminCookie(t)

	// Put the controller into edit mode first.
	require.Equal(t, http.StatusOK, app.get("/admin/products", ck).Code)
	app.postForm("/admin/products/"+itoa(p.ID)+"/edit", nil, ck)
	require.Equal(t, p.ID, app.h.Catalog.EditingID())

	rec := app.postForm("/logout", nil, ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value, "token cookie is cleared")
	require.True(t, cookies[0].Expires.Before(time.Now()))

	require.Zero(t, app.h.Catalog.EditingID(), "logout broadcast drops draft state")
}

func TestAdminProductsRendersList(t *testing.T) {
	app := newTestApp(t)
	app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Description: "desk lamp", Price: 19.5, Stock: 3})

	rec := app.get("/admin/products", app.adminCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Lamp")
	require.Contains(t, rec.Body.String(), "desk lamp")
	require.Contains(t, rec.Body.String(), "Add New Product")
}

func TestAdminProductsRequiresAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/admin/products")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	userToken := app.backend.IssueToken(t, "bob", "user", time.Now().Add(time.Hour))
	rec = app.get("/admin/products", &http.Cookie{Name: session.CookieName, Value: userToken})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestCreateProductFlow(t *testing.T) {
	app := newTestApp(t)
	ck := app.adminCookie(t)

	rec := app.postForm("/admin/products", url.Values{
		"name":  {"Widget"},
		"price": {"9.99"},
		"stock": {""},
	}, ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.get("/admin/products", ck)
	require.Contains(t, rec.Body.String(), "Widget")

	var stored shopapitest.Product
	require.NoError(t, app.backend.DB.Where("name = ?", "Widget").First(&stored).Error)
	require.Equal(t, 9.99, stored.Price)
	require.Equal(t, 0, stored.Stock)
}

func TestCreateProductValidationKeepsDraft(t *testing.T) {
	app := newTestApp(t)
	ck := app.adminCookie(t)

	rec := app.postForm("/admin/products", url.Values{
		"description": {"half-typed description"},
		"price":       {"9.99"},
	}, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "name and price are required")
	require.Contains(t, rec.Body.String(), "half-typed description", "draft survives the failure")
}

func TestEditSaveFlow(t *testing.T) {
	app := newTestApp(t)
	p := app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Price: 19.5, Stock: 3})
	ck := app.adminCookie(t)

	require.Equal(t, http.StatusOK, app.get("/admin/products", ck).Code)

	rec := app.postForm("/admin/products/"+itoa(p.ID)+"/edit", nil, ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.get("/admin/products", ck)
	require.Contains(t, rec.Body.String(), `value="Lamp"`, "edit form pre-filled from snapshot")

	rec = app.postForm("/admin/products/"+itoa(p.ID), url.Values{
		"name":  {"Lamp v2"},
		"price": {"25"},
		"stock": {"4"},
	}, ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.get("/admin/products", ck)
	require.Contains(t, rec.Body.String(), "Lamp v2")
	require.Zero(t, app.h.Catalog.EditingID())
}

func TestCancelEditDiscardsWithoutRequest(t *testing.T) {
	app := newTestApp(t)
	p := app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Price: 19.5})
	ck := app.adminCookie(t)

	require.Equal(t, http.StatusOK, app.get("/admin/products", ck).Code)
	app.postForm("/admin/products/"+itoa(p.ID)+"/edit", nil, ck)
	app.postForm("/admin/products/"+itoa(p.ID)+"/cancel", nil, ck)

	require.Zero(t, app.h.Catalog.EditingID())

	var stored shopapitest.Product
	require.NoError(t, app.backend.DB.First(&stored, p.ID).Error)
	require.Equal(t, "Lamp", stored.Name)
}

func TestDeleteProductFlow(t *testing.T) {
	app := newTestApp(t)
	p := app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Price: 19.5})
	ck := app.adminCookie(t)

	require.Equal(t, http.StatusOK, app.get("/admin/products", ck).Code)

	rec := app.postForm("/admin/products/"+itoa(p.ID)+"/delete", nil, ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.get("/admin/products", ck)
	require.NotContains(t, rec.Body.String(), ">Lamp<")

	var count int64
	app.backend.DB.Model(&shopapitest.Product{}).Count(&count)
	require.Zero(t, count)
}

func TestDeleteFailureSurfacesErrorAndKeepsList(t *testing.T) {
	app := newTestApp(t)
	app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Price: 19.5})
	ck := app.adminCookie(t)

	require.Equal(t, http.StatusOK, app.get("/admin/products", ck).Code)
	before := app.h.Catalog.Products()

	rec := app.postForm("/admin/products/999/delete", nil, ck)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Product not found")
	require.Equal(t, before, app.h.Catalog.Products())
}

func TestHomeSearchPassesThrough(t *testing.T) {
	app := newTestApp(t)
	app.backend.SeedProduct(t, shopapitest.Product{Name: "Lamp", Price: 19.5})
	app.backend.SeedProduct(t, shopapitest.Product{Name: "Mug", Price: 4})

	rec := app.get("/?search=Lam")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Lamp")
	require.NotContains(t, rec.Body.String(), "Mug")
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
