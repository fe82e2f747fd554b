// Package view renders the pricing page and its htmx fragments from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/contact"
	"github.com/haikalarif/portofolio-freelance/internal/format"
	"github.com/haikalarif/portofolio-freelance/internal/order"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Fragment names executed by handlers.
const (
	FragmentAddonCard    = "addon-card"
	FragmentOrderSummary = "order-summary"
	FragmentContact      = "contact-form"
)

// PageData is the full pricing page.
type PageData struct {
	Title     string
	CSRFToken string
	SessionID string
	Year      string
	Packages  []catalog.Package
	Addons    []AddonCard
	Contact   ContactData
	Summary   *OrderSummary
}

// PackageCard is one package with its order control.
type PackageCard struct {
	SessionID string
	CSRFToken string
	Package   catalog.Package
}

// AddonCard is one checkbox/card pair.
type AddonCard struct {
	SessionID   string
	Index       int
	Entry       order.AddonEntry
	Description template.HTML
}

// OrderSummary is shown after an order is dispatched.
type OrderSummary struct {
	Selection order.Selection
	Message   string
	URL       string
}

// ContactData drives the contact form fragment.
type ContactData struct {
	CSRFToken string
	Form      contact.Form
	Errors    *contact.ValidationError
	Services  []string
	URL       string
}

// Renderer executes the page templates. In dev mode templates are re-read from Dir on every render.
type Renderer struct {
	money *format.Formatter
	dev   bool
	dir   string

	once   sync.Once
	cached *template.Template
	err    error
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithFormatter sets the currency formatter exposed to templates as "rupiah".
func WithFormatter(f *format.Formatter) Option {
	return func(r *Renderer) {
		if f != nil {
			r.money = f
		}
	}
}

// WithDevDir reloads templates from dir on each render.
func WithDevDir(dir string) Option {
	return func(r *Renderer) {
		if dir != "" {
			r.dev = true
			r.dir = dir
		}
	}
}

// New returns a Renderer backed by the embedded templates.
func New(opts ...Option) *Renderer {
	r := &Renderer{money: format.Rupiah()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"rupiah": func(amount int64) string { return r.money.Format(amount) },
		"hasErr": func(e *contact.ValidationError, field string) bool { return e.Has(field) },
		"offerCatalog": OfferCatalog,
		"packageCard": func(page PageData, p catalog.Package) PackageCard {
			return PackageCard{SessionID: page.SessionID, CSRFToken: page.CSRFToken, Package: p}
		},
	}
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.dev {
		return r.parse(os.DirFS(r.dir), "*.tmpl")
	}
	r.once.Do(func() {
		r.cached, r.err = r.parse(embedded, "templates/*.tmpl")
	})
	return r.cached, r.err
}

func (r *Renderer) parse(fsys fs.FS, pattern string) (*template.Template, error) {
	t, err := template.New("_root").Funcs(r.funcs()).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return t, nil
}

// Page renders the full document.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.execute(w, "base", data)
}

// Fragment renders a named partial.
func (r *Renderer) Fragment(w io.Writer, name string, data any) error {
	return r.execute(w, name, data)
}

// execute buffers output so a template failure never leaves a half-written response.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("view: execute %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// AddonCards pairs registry entries with their catalog descriptions.
func AddonCards(sessionID string, entries []order.AddonEntry, addons []catalog.Addon) []AddonCard {
	desc := make(map[string]template.HTML, len(addons))
	for _, a := range addons {
		desc[a.ID] = a.Description
	}
	cards := make([]AddonCard, 0, len(entries))
	for i, e := range entries {
		cards = append(cards, AddonCard{SessionID: sessionID, Index: i, Entry: e, Description: desc[e.ID]})
	}
	return cards
}
