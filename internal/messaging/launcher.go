// Package messaging builds chat-application deep links and hands them to an Opener.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
)

const defaultHost = "wa.me"

// ErrNoDestination is returned when a launch has an empty destination.
var ErrNoDestination = errors.New("messaging: destination required")

// Client builds deep links of the form https://<host>/<destination>?text=<encoded>.
type Client struct {
	host string
}

// NewClient returns a Client for host, defaulting to wa.me.
func NewClient(host string) Client {
	host = strings.Trim(strings.TrimSpace(host), "/")
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	if host == "" {
		host = defaultHost
	}
	return Client{host: host}
}

// Host returns the configured messaging host.
func (c Client) Host() string {
	if c.host == "" {
		return defaultHost
	}
	return c.host
}

// URL returns the deep link for an already percent-encoded message.
func (c Client) URL(destination, encodedMessage string) string {
	return "https://" + c.Host() + "/" + strings.TrimSpace(destination) + "?text=" + encodedMessage
}

// Opener opens a deep link in a new browsing context.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// OpenerFunc adapts ordinary functions to Opener.
type OpenerFunc func(ctx context.Context, link string) error

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, link string) error { return f(ctx, link) }

type openerKey struct{}

// WithOpener attaches the opener that receives links launched within ctx.
func WithOpener(ctx context.Context, o Opener) context.Context {
	return context.WithValue(ctx, openerKey{}, o)
}

func openerFrom(ctx context.Context) Opener {
	if ctx != nil {
		if o, ok := ctx.Value(openerKey{}).(Opener); ok && o != nil {
			return o
		}
	}
	return logOpener{}
}

// logOpener is used when nothing in the request can open a window.
type logOpener struct{}

func (logOpener) Open(ctx context.Context, link string) error {
	observability.FromContext(ctx).Info("deep link ready", zap.Int("length", len(link)))
	return nil
}

// Launcher builds deep links and passes them to the opener found in the context.
type Launcher struct {
	client Client
}

// NewLauncher returns a Launcher using client.
func NewLauncher(client Client) *Launcher {
	return &Launcher{client: client}
}

// Launch implements order.Launcher.
func (l *Launcher) Launch(ctx context.Context, destination, encodedMessage string) error {
	if strings.TrimSpace(destination) == "" {
		return ErrNoDestination
	}
	link := l.client.URL(destination, encodedMessage)
	if err := openerFrom(ctx).Open(ctx, link); err != nil {
		return fmt.Errorf("messaging: open link: %w", err)
	}
	return nil
}

// Recorder is an Opener that keeps the links it was asked to open.
type Recorder struct {
	mu    sync.Mutex
	links []string
}

// Open implements Opener.
func (r *Recorder) Open(_ context.Context, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, link)
	return nil
}

// Links returns every recorded link in order.
func (r *Recorder) Links() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.links))
	copy(out, r.links)
	return out
}

// Last returns the most recent link, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.links) == 0 {
		return ""
	}
	return r.links[len(r.links)-1]
}

// WriterOpener prints links, one per line.
type WriterOpener struct {
	W io.Writer
}

// Open implements Opener.
func (o WriterOpener) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintln(o.W, link)
	return err
}
