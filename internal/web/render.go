package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/adminweb/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page carries the fields every view needs: the nav shell renders the
// session, the layout renders the surfaced error, the nav search box echoes
// the active query. It is embedded exported so template field lookup can
// promote through it.
type Page struct {
	Title   string
	Session *session.Session
	Error   string
	Search  string
}

// Renderer implements echo.Renderer over the embedded templates. Each page
// is parsed together with the shared layout and nav partial so that a page
// only defines its "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	names := []string{"home", "login", "register", "admin_dashboard", "admin_products", "error"}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(templatesFS,
			"templates/layout.html",
			"templates/nav.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
