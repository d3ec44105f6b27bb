// Package view renders html/template pages that share one layout.
//
// Every page file defines a "content" block; layout.html wraps it:
//
//	eng, _ := view.New(views.FS)
//	eng.Render(w, "shop", data)
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

const layoutFile = "layout.html"

// Engine holds one parsed template set per page.
type Engine struct {
	pages map[string]*template.Template
}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"money": Money,
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006 15:04")
	},
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
}

// Money formats whole rupees.
func Money(v int64) string {
	return fmt.Sprintf("₹%d", v)
}

// New parses layout.html plus every other *.html file in fsys.
func New(fsys fs.FS) (*Engine, error) {
	layout, err := template.New(layoutFile).Funcs(Funcs).ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	e := &Engine{pages: make(map[string]*template.Template)}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", f, err)
		}
		e.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return e, nil
}

// Render executes page name into w. Output is buffered so a template error
// never leaves a half-written page.
func (e *Engine) Render(w io.Writer, name string, data interface{}) error {
	t, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return fmt.Errorf("view: render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a page exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}
