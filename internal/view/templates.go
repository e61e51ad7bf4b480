package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/web"
)

// DefaultTheme is the header colour used when the visitor has no preference.
const DefaultTheme = "#303f9f"

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	LoggedIn    bool
	UserName    string
	Theme       string
	Data        any
}

// NewTemplateData fills the per-request fields: the pending flash, login state and the
// theme colour from the preference cookie.
func NewTemplateData(r *http.Request, title, csrfToken string, data any) TemplateData {
	td := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Theme:       shared.FavoriteColor(r, DefaultTheme),
		Data:        data,
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		td.Flash = sess.PopFlash()
		td.LoggedIn = sess.User() != ""
		td.UserName = sess.Get(shared.UserNameKey)
	}
	return td
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"darken": Darken,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderError writes the generic error page.
func (e *Engine) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) error {
	return e.RenderStatus(w, status, "pages/error.html", NewTemplateData(r, "Error", "", message))
}

// Darken returns the #rrggbb colour with every channel reduced by 20%. Malformed input
// is returned unchanged.
func Darken(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	var b strings.Builder
	b.WriteByte('#')
	for i := 1; i < 7; i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return hex
		}
		fmt.Fprintf(&b, "%02x", v*80/100)
	}
	return b.String()
}
