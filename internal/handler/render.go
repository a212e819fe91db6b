// Package handler contains the HTTP handlers: thin glue that parses
// forms, calls the service layer, and answers with a render or a
// redirect. Every successful state-changing POST redirects (no page is
// ever the direct response to a write), so a browser refresh can never
// replay the write.
package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// pageNames are the page templates under the template directory. Each is
// parsed together with base.html into its own set so two pages can both
// define a "content" block without clobbering each other.
var pageNames = []string{"index.html", "secrets.html", "secret.html", "error.html"}

// Renderer holds the parsed template sets, one per page.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses all page templates once at startup.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name),
		)
		if err != nil {
			return nil, err
		}
		pages[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// pageData is the envelope every template receives. Data carries the
// page-specific payload; the rest is shared chrome.
type pageData struct {
	Title    string
	LoggedIn bool
	UserName string
	Flashes  []string
	Data     any
}

// Render executes the named page into a buffer first, so a template
// error can still become a clean 500 instead of a half-written page.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// RenderError is the terminal error page: the taxonomy's catch-all
// (404s, unhandled failures) ends here with a human-readable message.
func (rn *Renderer) RenderError(w http.ResponseWriter, status int, message string) {
	rn.Render(w, status, "error", pageData{
		Title: "Something went wrong",
		Data:  map[string]any{"Status": status, "Message": message},
	})
}
