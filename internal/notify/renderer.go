package notify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/workflow"
)

// PlainTextMarker delimits the part of a rendered mail that becomes the
// plain-text alternative. Templates emit it with {{marker}}.
const PlainTextMarker = "<!--c281b02d33538e511c1c5551f13d71d2-->"

var ErrNoPlainText = errors.New("rendered mail has no plain-text region")

//go:embed templates/mail/*.html
var templateFS embed.FS

type Renderer struct {
	tmpl *template.Template
	site string
}

// NewRenderer loads the embedded mail templates.
func NewRenderer(site string) (*Renderer, error) {
	return NewRendererFS(templateFS, "templates/mail", site)
}

// NewRendererFS loads <dir>/<topic>.html for every topic and fails if one
// is missing.
func NewRendererFS(fsys fs.FS, dir, site string) (*Renderer, error) {
	root := template.New("mail").Funcs(template.FuncMap{
		"marker":    func() template.HTML { return template.HTML(PlainTextMarker) },
		"sizeLabel": models.SizeLabel,
	})

	for _, t := range workflow.AllTopics() {
		name := t.String() + ".html"
		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("template for topic %s: %w", t, err)
		}
		if _, err := root.New(name).Parse(string(b)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}

	return &Renderer{tmpl: root, site: site}, nil
}

// Render executes the topic's template and derives the plain-text body.
func (r *Renderer) Render(topic workflow.Topic, data map[string]any) (string, string, error) {
	payload := make(map[string]any, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["site"] = r.site
	payload["subject"] = topic.Subject()

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, topic.String()+".html", payload); err != nil {
		return "", "", fmt.Errorf("render %s: %w", topic, err)
	}

	html := buf.String()
	text, err := PlainText(html)
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", topic, err)
	}
	return html, text, nil
}

// PlainText takes the region after the first marker, up to the next one,
// and strips its markup.
func PlainText(html string) (string, error) {
	parts := strings.Split(html, PlainTextMarker)
	if len(parts) < 2 {
		return "", ErrNoPlainText
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.TrimSpace(parts[1])))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}
