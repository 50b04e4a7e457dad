// Package view renders the embedded HTML templates. Pages are wrapped in
// layout.html; fragments (rows, forms) are rendered on their own for htmx.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/corequote/corequote/auth"
	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/money"
	"github.com/corequote/corequote/validation"
	"github.com/shopspring/decimal"
)

//go:embed templates static
var files embed.FS

const dateLayout = "02/01/2006 15:04"

var (
	loc = time.UTC

	loadOnce sync.Once
	loadErr  error
	base     *template.Template            // layout + partials
	pages    map[string]*template.Template // page name -> base + page
)

// SetLocation sets the time zone dates are printed in.
func SetLocation(l *time.Location) {
	if l != nil {
		loc = l
	}
}

// Funcs returns the standard func map including i18n and simple helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.Default
	if r != nil {
		lang = i18n.FromContext(r.Context())
	}
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"tf":   func(code string, args ...any) string { return fmt.Sprintf(i18n.T(lang, code), args...) },
		"lang": func() string { return lang },
		// err returns the translated error for field, or "".
		"err": func(v validation.Violations, field string) string {
			if code, ok := v[field]; ok {
				return i18n.T(lang, code)
			}
			return ""
		},
		"money":   money.Format,
		"compact": money.FormatCompact,
		"fixed":   func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date":    func(t time.Time) string { return t.In(loc).Format(dateLayout) },
		"statusLabel": func(s models.QuoteStatus) string {
			return s.Label()
		},
		"lineField": forms.LineField,
		"idstr":     func(id uint) string { return fmt.Sprint(id) },
		"year":      func() int { return time.Now().Year() },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

func load() {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		loadErr = err
		return
	}
	base, err = template.New("layout.html").Funcs(Funcs(nil)).ParseFS(sub, "layout.html", "partials/*.html")
	if err != nil {
		loadErr = fmt.Errorf("parse layout: %w", err)
		return
	}
	names, err := fs.Glob(sub, "*.html")
	if err != nil {
		loadErr = err
		return
	}
	pages = make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == "layout.html" {
			continue
		}
		t, err := base.Clone()
		if err == nil {
			t, err = t.ParseFS(sub, name)
		}
		if err != nil {
			loadErr = fmt.Errorf("parse %s: %w", name, err)
			return
		}
		pages[name] = t
	}
}

// Load parses the templates once. Render calls it lazily; the server calls
// it at start-up so template errors fail fast.
func Load() error {
	loadOnce.Do(load)
	return loadErr
}

func withDefaults(r *http.Request, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	if _, exists := data["Path"]; !exists {
		data["Path"] = r.URL.Path
	}
	return data
}

// Render executes page name (e.g. "clients.html") inside the layout.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if err := Load(); err != nil {
		return err
	}
	page, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return execute(w, r, page, "layout.html", withDefaults(r, data), "text/html; charset=utf-8")
}

// Fragment executes a named partial template (e.g. "client_row") alone.
func Fragment(w http.ResponseWriter, r *http.Request, name string, data any) error {
	if err := Load(); err != nil {
		return err
	}
	return execute(w, r, base, name, data, "text/html; charset=utf-8")
}

// String renders a partial to a string, for rows sent inside HX-Trigger.
func String(r *http.Request, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := Load(); err != nil {
		return "", err
	}
	t, err := bind(base, r)
	if err != nil {
		return "", err
	}
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func bind(t *template.Template, r *http.Request) (*template.Template, error) {
	c, err := t.Clone()
	if err != nil {
		return nil, err
	}
	return c.Funcs(Funcs(r)), nil
}

// execute renders into a buffer first so a template error can still become
// a 500 instead of a half-written page.
func execute(w http.ResponseWriter, r *http.Request, t *template.Template, name string, data any, ctype string) error {
	bt, err := bind(t, r)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := bt.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", ctype)
	}
	_, err = io.Copy(w, &buf)
	return err
}

// Static returns the embedded static files (css, js).
func Static() fs.FS {
	sub, _ := fs.Sub(files, "static")
	return sub
}
