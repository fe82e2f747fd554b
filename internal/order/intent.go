package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnhandledIntent is returned when no handler is registered for an intent kind.
	ErrUnhandledIntent = errors.New("order: unhandled intent")
	// ErrUnknownAddon is returned for an add-on index outside the registry.
	ErrUnknownAddon = errors.New("order: unknown add-on")
)

// IntentKind names a user intent routed through the command table.
type IntentKind string

const (
	KindToggleAddon   IntentKind = "toggle_addon"
	KindSetAddon      IntentKind = "set_addon"
	KindPlaceOrder    IntentKind = "place_order"
	KindSubmitContact IntentKind = "submit_contact"
	KindOpenChat      IntentKind = "open_chat"
)

// Intent is a decoded user action.
type Intent interface {
	Kind() IntentKind
}

// ToggleAddon is a click inside an add-on card.
type ToggleAddon struct {
	Index  int
	Region Region
}

// Kind implements Intent.
func (ToggleAddon) Kind() IntentKind { return KindToggleAddon }

// SetAddon is a checkbox change event carrying the new checked state.
type SetAddon struct {
	Index   int
	Checked bool
}

// Kind implements Intent.
func (SetAddon) Kind() IntentKind { return KindSetAddon }

// PlaceOrder is an order button activation.
type PlaceOrder struct {
	Control PackageControl
}

// Kind implements Intent.
func (PlaceOrder) Kind() IntentKind { return KindPlaceOrder }

// Outcome reports what an intent did.
type Outcome struct {
	Changed bool
	Entry   AddonEntry
	Order   *Result
	Payload any
}

// HandlerFunc handles one intent against the page registry. reg may be nil for intents
// that do not touch the selection.
type HandlerFunc func(ctx context.Context, reg *Registry, in Intent) (Outcome, error)

// CommandTable routes intents to handlers, keeping transport bindings away from the core.
type CommandTable struct {
	mu       sync.RWMutex
	handlers map[IntentKind]HandlerFunc
}

// NewCommandTable registers the selection and order handlers backed by d.
func NewCommandTable(d *Dispatcher) *CommandTable {
	t := &CommandTable{handlers: make(map[IntentKind]HandlerFunc)}
	t.Register(KindToggleAddon, handleToggle)
	t.Register(KindSetAddon, handleSet)
	t.Register(KindPlaceOrder, func(ctx context.Context, reg *Registry, in Intent) (Outcome, error) {
		po, ok := in.(PlaceOrder)
		if !ok {
			return Outcome{}, unexpected(in)
		}
		res, err := d.Dispatch(ctx, reg, po.Control)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Order: &res}, nil
	})
	return t
}

// Register installs h for kind, replacing any previous handler.
func (t *CommandTable) Register(kind IntentKind, h HandlerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[kind] = h
}

// Handle routes in to its handler.
func (t *CommandTable) Handle(ctx context.Context, reg *Registry, in Intent) (Outcome, error) {
	if in == nil {
		return Outcome{}, fmt.Errorf("%w: nil intent", ErrUnhandledIntent)
	}
	t.mu.RLock()
	h, ok := t.handlers[in.Kind()]
	t.mu.RUnlock()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnhandledIntent, in.Kind())
	}
	return h(ctx, reg, in)
}

func handleToggle(_ context.Context, reg *Registry, in Intent) (Outcome, error) {
	ti, ok := in.(ToggleAddon)
	if !ok {
		return Outcome{}, unexpected(in)
	}
	if _, ok := reg.Entry(ti.Index); !ok {
		return Outcome{}, fmt.Errorf("%w: index %d", ErrUnknownAddon, ti.Index)
	}
	changed := reg.Click(ti.Index, ti.Region)
	entry, _ := reg.Entry(ti.Index)
	return Outcome{Changed: changed, Entry: entry}, nil
}

func handleSet(_ context.Context, reg *Registry, in Intent) (Outcome, error) {
	si, ok := in.(SetAddon)
	if !ok {
		return Outcome{}, unexpected(in)
	}
	if _, ok := reg.Entry(si.Index); !ok {
		return Outcome{}, fmt.Errorf("%w: index %d", ErrUnknownAddon, si.Index)
	}
	changed := reg.Set(si.Index, si.Checked)
	entry, _ := reg.Entry(si.Index)
	return Outcome{Changed: changed, Entry: entry}, nil
}

func unexpected(in Intent) error {
	return fmt.Errorf("%w: unexpected %T for %s", ErrUnhandledIntent, in, in.Kind())
}
