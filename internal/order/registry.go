package order

import "strings"

// AddonDecl is the declared shape of one add-on card and its checkbox.
type AddonDecl struct {
	ID    string
	Name  string
	Price int64
}

// AddonEntry is one purchasable add-on in a page session.
type AddonEntry struct {
	ID       string
	Name     string
	Price    int64
	Selected bool
}

// Region identifies where inside an add-on card a click landed.
type Region string

const (
	// RegionCard is any point of the card outside the checkbox and its label.
	RegionCard Region = "card"
	// RegionCheckbox is the checkbox input itself.
	RegionCheckbox Region = "checkbox"
	// RegionLabel is the checkbox label wrapping the input.
	RegionLabel Region = "label"
)

// ParseRegion maps a posted region name to a Region; unknown values mean the card body.
func ParseRegion(raw string) Region {
	switch Region(strings.ToLower(strings.TrimSpace(raw))) {
	case RegionCheckbox:
		return RegionCheckbox
	case RegionLabel:
		return RegionLabel
	default:
		return RegionCard
	}
}

// Registry owns the add-on catalog of a single page session together with its selection state.
// The card's selected indicator is derived from the same Selected flag as the checkbox,
// so the two can never disagree.
type Registry struct {
	entries []AddonEntry
}

// NewRegistry builds one unselected entry per declaration, preserving declaration order.
// An empty declaration list yields an empty registry on which every operation is a no-op.
func NewRegistry(decls []AddonDecl) *Registry {
	entries := make([]AddonEntry, 0, len(decls))
	for _, d := range decls {
		entries = append(entries, AddonEntry{
			ID:    d.ID,
			Name:  d.Name,
			Price: d.Price,
		})
	}
	return &Registry{entries: entries}
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entries returns a snapshot of every entry in registry order.
func (r *Registry) Entries() []AddonEntry {
	if r == nil {
		return nil
	}
	out := make([]AddonEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Entry returns the entry at index i.
func (r *Registry) Entry(i int) (AddonEntry, bool) {
	if !r.valid(i) {
		return AddonEntry{}, false
	}
	return r.entries[i], true
}

// Index returns the position of the entry with the given id, or -1.
func (r *Registry) Index(id string) int {
	if r == nil {
		return -1
	}
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Toggle flips the selection of entry i. It reports false when i is out of range.
func (r *Registry) Toggle(i int) bool {
	if !r.valid(i) {
		return false
	}
	r.entries[i].Selected = !r.entries[i].Selected
	return true
}

// Set applies the checkbox state carried by a change event. It reports whether the
// entry changed, so a duplicated change event converges instead of flipping back.
func (r *Registry) Set(i int, checked bool) bool {
	if !r.valid(i) || r.entries[i].Selected == checked {
		return false
	}
	r.entries[i].Selected = checked
	return true
}

// Click routes a click inside card i. Only clicks on the card body toggle; the checkbox
// and its label already produce their own change event and must not toggle a second time.
func (r *Registry) Click(i int, region Region) bool {
	if region != RegionCard {
		return false
	}
	return r.Toggle(i)
}

// Selected returns the selected entries in registry order.
func (r *Registry) Selected() []AddonEntry {
	if r == nil {
		return nil
	}
	var out []AddonEntry
	for _, e := range r.entries {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}

func (r *Registry) valid(i int) bool {
	return r != nil && i >= 0 && i < len(r.entries)
}
