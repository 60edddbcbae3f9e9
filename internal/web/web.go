// Package web renders the HTML served by the shell and the remote.
//
// # Templates
//
// Templates are embedded from templates/ and parsed once by [NewRenderer]:
//
//   - login: the shell's login form, showing "Invalid credentials" on a failed attempt
//   - shell: the authenticated layout with the welcome line, logout button, footer, and either the
//     rendered library component or the fallback notice
//   - library: the remote's fragment with filter, sort and group controls plus admin-only add/delete forms
//
// # Mounting
//
// The library fragment is rendered by the remote but embedded in the shell page. [LibraryPage.Page] is the
// path its filter form submits to, and [LibraryPage.Mount] prefixes the add/delete form actions so they
// reach the remote through the shell's proxy.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Option is a select option.
type Option struct {
	Value string
	Label string
}

// SortOptions lists the sort select entries.
func SortOptions() []Option {
	opts := make([]Option, 0, len(catalog.Fields))
	for _, f := range catalog.Fields {
		opts = append(opts, Option{Value: string(f), Label: "Sort by " + f.Label()})
	}
	return opts
}

// GroupOptions lists the group select entries.
func GroupOptions() []Option {
	opts := make([]Option, 0, len(catalog.GroupKeys))
	for _, g := range catalog.GroupKeys {
		f, ok := g.Field()
		if !ok {
			opts = append(opts, Option{Value: string(g), Label: "No Grouping"})
			continue
		}
		opts = append(opts, Option{Value: string(g), Label: "Group by " + f.Label()})
	}
	return opts
}

// LoginPage is the data for the login template.
type LoginPage struct {
	Username string
	Error    string
}

// ShellPage is the data for the authenticated layout.
type ShellPage struct {
	User      models.User
	Component template.HTML
	Fallback  string
	Year      int
}

// LibraryPage is the data for the library fragment.
type LibraryPage struct {
	Role        models.Role
	Result      catalog.Result
	Artists     []string
	Albums      []string
	Page        string
	Mount       string
	ShowAddForm bool
	Error       string
}

func (p LibraryPage) Admin() bool { return p.Role == models.RoleAdmin }

func (p LibraryPage) SortOptions() []Option  { return SortOptions() }
func (p LibraryPage) GroupOptions() []Option { return GroupOptions() }

// Return is the page URL with the current view, used as the post-redirect target.
func (p LibraryPage) Return() string {
	return p.pageURL(p.Result.View.Query())
}

// ToggleURL is the page URL with the sort direction flipped.
func (p LibraryPage) ToggleURL() string {
	v := p.Result.View
	v.ToggleOrder()
	q := v.Query()
	if p.ShowAddForm {
		q.Set("add", "1")
	}
	return p.pageURL(q)
}

// AddFormURL toggles the add form.
func (p LibraryPage) AddFormURL() string {
	q := p.Result.View.Query()
	if !p.ShowAddForm {
		q.Set("add", "1")
	}
	return p.pageURL(q)
}

func (p LibraryPage) pageURL(q url.Values) string {
	page := p.Page
	if page == "" {
		page = "/"
	}
	return page + "?" + q.Encode()
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// MustRenderer is [NewRenderer] for package-level setup; it panics on a template error.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Login(w io.Writer, p LoginPage) error     { return r.execute(w, "login", p) }
func (r *Renderer) Shell(w io.Writer, p ShellPage) error     { return r.execute(w, "shell", p) }
func (r *Renderer) Library(w io.Writer, p LibraryPage) error { return r.execute(w, "library", p) }

// execute renders into a buffer first so a template error never leaves a partial response.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
