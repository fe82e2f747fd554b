package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/format"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
)

var (
	// ErrMalformedPrice is returned when a declared price is not a non-negative integer.
	ErrMalformedPrice = errors.New("order: malformed price attribute")
	// ErrNoRegistry is returned when a dispatch has no page session to read from.
	ErrNoRegistry = errors.New("order: registry not initialised")
)

// MaxPrice is the largest price attribute accepted, in whole Rupiah.
const MaxPrice int64 = 1_000_000_000_000

// Launcher hands an encoded message to the external messaging application.
type Launcher interface {
	Launch(ctx context.Context, destination, encodedMessage string) error
}

// LauncherFunc adapts ordinary functions to Launcher.
type LauncherFunc func(ctx context.Context, destination, encodedMessage string) error

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, destination, encodedMessage string) error {
	return f(ctx, destination, encodedMessage)
}

// PackageControl carries the raw attributes declared on an order button.
type PackageControl struct {
	Name  string
	Price string
}

// Result describes a completed dispatch.
type Result struct {
	Selection Selection
	Message   string
	Encoded   string
}

// Dispatcher turns an order button activation into a launched message.
type Dispatcher struct {
	launcher    Launcher
	destination string
	composer    Composer
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithFormatter sets the currency formatter used by the composer.
func WithFormatter(f *format.Formatter) DispatcherOption {
	return func(d *Dispatcher) {
		d.composer.Money = f
	}
}

// NewDispatcher constructs a Dispatcher sending every order to destination.
func NewDispatcher(launcher Launcher, destination string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		launcher:    launcher,
		destination: strings.TrimSpace(destination),
		composer:    Composer{Money: format.Rupiah()},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Destination returns the fixed messaging destination.
func (d *Dispatcher) Destination() string { return d.destination }

// Dispatch reads the package attributes, totals the current selection, composes the message
// and hands it to the launcher. A malformed price aborts before anything is launched.
// Launcher failures are logged and otherwise ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, reg *Registry, control PackageControl) (Result, error) {
	price, err := ParsePrice(control.Price)
	if err != nil {
		return Result{}, err
	}
	if reg == nil {
		return Result{}, ErrNoRegistry
	}

	addons := reg.Selected()
	total, err := CheckedTotal(price, addons)
	if err != nil {
		return Result{}, err
	}
	name := strings.TrimSpace(control.Name)
	msg := d.composer.Compose(name, price, addons, total)
	encoded := EncodeComponent(msg)

	result := Result{
		Selection: Selection{
			Package: PackageOffer{Name: name, BasePrice: price},
			Addons:  addons,
			Total:   total,
		},
		Message: msg,
		Encoded: encoded,
	}

	if d.launcher != nil {
		if err := d.launcher.Launch(ctx, d.destination, encoded); err != nil {
			observability.FromContext(ctx).Warn("order launch failed",
				zap.String("package", name),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

// ParsePrice parses a declared integer price attribute.
func ParsePrice(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPrice, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative %q", ErrMalformedPrice, raw)
	}
	if v > MaxPrice {
		return 0, fmt.Errorf("%w: %q above %d", ErrMalformedPrice, raw, MaxPrice)
	}
	return v, nil
}

// componentUnescaper restores the marks encodeURIComponent leaves alone but QueryEscape encodes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way encodeURIComponent does, so spaces become %20
// and !'()* stay literal.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
