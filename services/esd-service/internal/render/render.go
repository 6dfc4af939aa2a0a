// Package render turns stored mail template content into a mail body.
package render

import (
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Source is the unrendered content of one template translation.
type Source struct {
	Subject string
	HTML    string
	Plain   string
}

type Rendered struct {
	Subject string
	HTML    string
	Plain   string
}

// Renderer compiles templates once per distinct source text.
// HTML output is autoescaped; subject and plain text are not.
type Renderer struct {
	mu       sync.Mutex
	compiled map[string]*pongo2.Template
}

func New() *Renderer {
	return &Renderer{compiled: map[string]*pongo2.Template{}}
}

func (r *Renderer) Render(src Source, vars map[string]any) (Rendered, error) {
	subject, err := r.execute(unescaped(src.Subject), vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("render subject: %w", err)
	}
	html, err := r.execute(src.HTML, vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("render html: %w", err)
	}
	plain, err := r.execute(unescaped(src.Plain), vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("render plain: %w", err)
	}
	return Rendered{Subject: subject, HTML: html, Plain: plain}, nil
}

func (r *Renderer) execute(source string, vars map[string]any) (string, error) {
	if source == "" {
		return "", nil
	}
	tpl, err := r.template(source)
	if err != nil {
		return "", err
	}
	return tpl.Execute(pongo2.Context(vars))
}

func (r *Renderer) template(source string) (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.compiled[source]; ok {
		return tpl, nil
	}
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, err
	}
	r.compiled[source] = tpl
	return tpl, nil
}

func unescaped(source string) string {
	if source == "" {
		return ""
	}
	return "{% autoescape off %}" + source + "{% endautoescape %}"
}
