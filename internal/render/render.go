package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"mc-gallery/internal/gallery"
	"mc-gallery/internal/logging"
	"mc-gallery/internal/tags"
)

//go:embed templates/page.html.tmpl
var pageTemplate string

// DefaultTitle is used when the configuration does not name the gallery.
const DefaultTitle = "Minecraft Server Gallery"

// Renderer renders manifest pages to static HTML documents.
type Renderer struct {
	tmpl  *template.Template
	title string
}

// pageData is the template context for one page.
type pageData struct {
	Title       string
	Page        gallery.Page
	Tags        []string
	PrevLink    string
	NextLink    string
	ShowingFrom int
	ShowingTo   int
	Total       int
}

// New creates a Renderer with the given gallery title.
func New(title string) (*Renderer, error) {
	if title == "" {
		title = DefaultTitle
	}

	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &Renderer{tmpl: tmpl, title: title}, nil
}

// RenderPage renders a single page to HTML bytes. total is the number of
// records in the whole manifest.
func (r *Renderer) RenderPage(page gallery.Page, total int) ([]byte, error) {
	data := pageData{
		Title: r.title,
		Page:  page,
		Tags:  tags.Vocabulary,
		Total: total,
	}

	if page.Index > 1 {
		data.PrevLink = gallery.Page{Index: page.Index - 1}.Filename()
	}
	if page.Index < page.TotalPages {
		data.NextLink = gallery.Page{Index: page.Index + 1}.Filename()
	}

	if len(page.Records) > 0 {
		// Every page before the last holds exactly the page size, so its
		// own length gives the offset; the last page counts back from the
		// total.
		if page.Index == page.TotalPages {
			data.ShowingFrom = total - len(page.Records) + 1
		} else {
			data.ShowingFrom = (page.Index-1)*len(page.Records) + 1
		}
		data.ShowingTo = data.ShowingFrom + len(page.Records) - 1
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page.Index, err)
	}
	return buf.Bytes(), nil
}

// WritePages renders every page into outDir using the index.html /
// indexN.html naming scheme.
func (r *Renderer) WritePages(outDir string, pages []gallery.Page, total int) error {
	for _, page := range pages {
		html, err := r.RenderPage(page, total)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, page.Filename())
		if err := os.WriteFile(path, html, 0o644); err != nil {
			return fmt.Errorf("writing page %s: %w", path, err)
		}
		logging.Debug("Rendered %s (%d records)", page.Filename(), len(page.Records))
	}
	return nil
}
