package contact

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/order"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
)

// DefaultGreeting opens a generic chat from the floating button.
const DefaultGreeting = "Halo, saya tertarik dengan layanan pembuatan website Anda."

// Submit is a contact form submission intent.
type Submit struct {
	Form Form
}

// Kind implements order.Intent.
func (Submit) Kind() order.IntentKind { return order.KindSubmitContact }

// OpenChat is the generic "chat with us" intent.
type OpenChat struct {
	Greeting string
}

// Kind implements order.Intent.
func (OpenChat) Kind() order.IntentKind { return order.KindOpenChat }

// Sent is the outcome payload of a launched contact or chat message.
type Sent struct {
	Form    Form
	Message string
	Encoded string
}

// SubmitHandler validates the form and launches it to destination. Validation failures are
// returned as *ValidationError and nothing is launched.
func SubmitHandler(l order.Launcher, destination string) order.HandlerFunc {
	return func(ctx context.Context, _ *order.Registry, in order.Intent) (order.Outcome, error) {
		sub, ok := in.(Submit)
		if !ok {
			return order.Outcome{}, fmt.Errorf("%w: unexpected %T", order.ErrUnhandledIntent, in)
		}
		form := sub.Form.Normalize()
		if err := form.Validate(); err != nil {
			return order.Outcome{Payload: Sent{Form: form}}, err
		}
		sent := launch(ctx, l, destination, ComposeMessage(form))
		sent.Form = form
		return order.Outcome{Payload: sent}, nil
	}
}

// ChatHandler launches the greeting, or DefaultGreeting when blank, to destination.
func ChatHandler(l order.Launcher, destination string) order.HandlerFunc {
	return func(ctx context.Context, _ *order.Registry, in order.Intent) (order.Outcome, error) {
		oc, ok := in.(OpenChat)
		if !ok {
			return order.Outcome{}, fmt.Errorf("%w: unexpected %T", order.ErrUnhandledIntent, in)
		}
		greeting := strings.TrimSpace(oc.Greeting)
		if greeting == "" {
			greeting = DefaultGreeting
		}
		return order.Outcome{Payload: launch(ctx, l, destination, greeting)}, nil
	}
}

func launch(ctx context.Context, l order.Launcher, destination, message string) Sent {
	sent := Sent{Message: message, Encoded: order.EncodeComponent(message)}
	if err := l.Launch(ctx, destination, sent.Encoded); err != nil {
		observability.FromContext(ctx).Warn("contact launch failed", zap.Error(err))
	}
	return sent
}
