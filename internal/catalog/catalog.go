// Package catalog loads the typed package and add-on configuration shown on the pricing page.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/haikalarif/portofolio-freelance/internal/order"
)

// ErrUnknownPackage is returned when a package id is not in the catalog.
var ErrUnknownPackage = errors.New("catalog: unknown package")

// Package is one orderable package card.
type Package struct {
	order.PackageOffer
	ID          string
	Tagline     string
	Features    []string
	Highlighted bool
	Description template.HTML
}

// Addon is one add-on card with its checkbox.
type Addon struct {
	ID          string
	Name        string
	Price       int64
	Description template.HTML
}

// Decl returns the registry declaration for the add-on.
func (a Addon) Decl() order.AddonDecl {
	return order.AddonDecl{ID: a.ID, Name: a.Name, Price: a.Price}
}

// Issue describes a catalog entry that was skipped during loading.
type Issue struct {
	Section string
	Index   int
	ID      string
	Field   string
	Value   string
	Err     error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%d] %q: %s=%q: %v", i.Section, i.Index, i.ID, i.Field, i.Value, i.Err)
}

// Catalog is the validated, immutable page configuration.
type Catalog struct {
	packages []Package
	addons   []Addon
	skipped  []Issue
}

// Packages returns the packages in declaration order.
func (c *Catalog) Packages() []Package {
	out := make([]Package, len(c.packages))
	copy(out, c.packages)
	return out
}

// Addons returns the add-ons in declaration order.
func (c *Catalog) Addons() []Addon {
	out := make([]Addon, len(c.addons))
	copy(out, c.addons)
	return out
}

// Skipped lists the entries rejected by validation.
func (c *Catalog) Skipped() []Issue {
	out := make([]Issue, len(c.skipped))
	copy(out, c.skipped)
	return out
}

// Package looks up a package by id.
func (c *Catalog) Package(id string) (Package, error) {
	id = strings.TrimSpace(id)
	for _, p := range c.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, fmt.Errorf("%w: %q", ErrUnknownPackage, id)
}

// AddonDecls returns the registry declarations for every add-on.
func (c *Catalog) AddonDecls() []order.AddonDecl {
	out := make([]order.AddonDecl, 0, len(c.addons))
	for _, a := range c.addons {
		out = append(out, a.Decl())
	}
	return out
}

// NewRegistry builds a fresh page-session registry over the catalog's add-ons.
func (c *Catalog) NewRegistry() *order.Registry {
	return order.NewRegistry(c.AddonDecls())
}

type fileDoc struct {
	Packages []packageDoc `yaml:"packages"`
	Addons   []addonDoc   `yaml:"addons"`
}

type packageDoc struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Price       priceAttr `yaml:"price"`
	Tagline     string    `yaml:"tagline"`
	Features    []string  `yaml:"features"`
	Highlighted bool      `yaml:"highlighted"`
	Description string    `yaml:"description"`
}

type addonDoc struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Price       priceAttr `yaml:"price"`
	Description string    `yaml:"description"`
}

// priceAttr keeps the raw scalar so malformed prices are reported instead of failing the whole file.
type priceAttr struct {
	raw string
}

func (p *priceAttr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a scalar", value.Line)
	}
	p.raw = value.Value
	return nil
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates a YAML catalog document. Entries with a malformed price, an empty name or a
// duplicate id are skipped and reported through Skipped; only syntax errors fail the load.
func Parse(raw []byte) (*Catalog, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := &Catalog{}
	md := newRenderer()

	seen := map[string]struct{}{}
	for i, pd := range doc.Packages {
		id := slugOr(pd.ID, pd.Name)
		if issue, ok := validateEntry("packages", i, id, pd.Name, pd.Price, seen); !ok {
			c.skipped = append(c.skipped, issue)
			continue
		}
		price, _ := order.ParsePrice(pd.Price.raw)
		features := make([]string, 0, len(pd.Features))
		for _, f := range pd.Features {
			if f = strings.TrimSpace(f); f != "" {
				features = append(features, f)
			}
		}
		c.packages = append(c.packages, Package{
			PackageOffer: order.PackageOffer{Name: strings.TrimSpace(pd.Name), BasePrice: price},
			ID:           id,
			Tagline:      strings.TrimSpace(pd.Tagline),
			Features:     features,
			Highlighted:  pd.Highlighted,
			Description:  md.render(pd.Description),
		})
	}

	seen = map[string]struct{}{}
	for i, ad := range doc.Addons {
		id := slugOr(ad.ID, ad.Name)
		if issue, ok := validateEntry("addons", i, id, ad.Name, ad.Price, seen); !ok {
			c.skipped = append(c.skipped, issue)
			continue
		}
		price, _ := order.ParsePrice(ad.Price.raw)
		c.addons = append(c.addons, Addon{
			ID:          id,
			Name:        strings.TrimSpace(ad.Name),
			Price:       price,
			Description: md.render(ad.Description),
		})
	}

	return c, nil
}

var (
	errEmptyName = errors.New("catalog: name required")
	errDuplicate = errors.New("catalog: duplicate id")
)

func validateEntry(section string, index int, id, name string, price priceAttr, seen map[string]struct{}) (Issue, bool) {
	issue := Issue{Section: section, Index: index, ID: id}
	if strings.TrimSpace(name) == "" {
		issue.Field, issue.Err = "name", errEmptyName
		return issue, false
	}
	if _, err := order.ParsePrice(price.raw); err != nil {
		issue.Field, issue.Value, issue.Err = "price", price.raw, err
		return issue, false
	}
	if _, dup := seen[id]; dup {
		issue.Field, issue.Value, issue.Err = "id", id, errDuplicate
		return issue, false
	}
	seen[id] = struct{}{}
	return issue, true
}

func slugOr(id, name string) string {
	if id = strings.TrimSpace(id); id != "" {
		return strings.ToLower(id)
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
