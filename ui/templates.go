package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"statlab/domain/permutation"
	"statlab/internal/errors"
)

// pageData is what every page template receives
type pageData struct {
	Title  string
	Active string
	Error  string
	Form   map[string]string
	Data   interface{}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"fmt2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"fmt4": func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"optional": func(v *float64) string {
			if v == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.4f", *v)
		},
		// barWidth scales a histogram count to a percentage of the tallest bin
		"barWidth": func(count int, h permutation.Histogram) float64 {
			tallest := 0
			for _, b := range h.Bins {
				if b.Count > tallest {
					tallest = b.Count
				}
			}
			if tallest == 0 {
				return 0
			}
			return 100 * float64(count) / float64(tallest)
		},
		"contains": func(b permutation.HistogramBin, x float64) bool {
			return x >= b.Lower && x <= b.Upper
		},
		"add": func(a, b int) int { return a + b },
	}
}

// renderTemplate executes into a buffer first so a template error never
// leaves a half-written page.
func (a *App) renderTemplate(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("template %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("writing %s: %v", name, err)
	}
}

// renderError shows the page with the error message and the status the API
// would have answered with.
func (a *App) renderError(w http.ResponseWriter, name string, data pageData, err error) {
	wrapped := errors.Wrap(err, data.Title)
	status := errors.HTTPStatus(wrapped)
	if status >= http.StatusInternalServerError {
		a.logger.Error("%s: %v", name, wrapped)
	}
	data.Error = wrapped.Error()

	var buf bytes.Buffer
	if tplErr := a.templates.ExecuteTemplate(&buf, name, data); tplErr != nil {
		http.Error(w, wrapped.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderMarkdown(path string) (template.HTML, error) {
	source, err := embeddedFiles.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.Render(p.Parse(source), renderer)), nil
}
