package ui

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/contact"
	"github.com/haikalarif/portofolio-freelance/internal/format"
	custommw "github.com/haikalarif/portofolio-freelance/internal/httpserver/middleware"
	"github.com/haikalarif/portofolio-freelance/internal/messaging"
	"github.com/haikalarif/portofolio-freelance/internal/metrics"
	"github.com/haikalarif/portofolio-freelance/internal/order"
	"github.com/haikalarif/portofolio-freelance/internal/pagesession"
	"github.com/haikalarif/portofolio-freelance/internal/platform/httpx"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
	"github.com/haikalarif/portofolio-freelance/internal/view"
)

// LaunchEvent is the client event fired with the deep link after an order is placed.
const LaunchEvent = "order:launch"

const otherService = "Lainnya"

// Dependencies collects the collaborators required by the UI handlers.
type Dependencies struct {
	Title        string
	Catalog      *catalog.Catalog
	Sessions     *pagesession.Store
	Commands     *order.CommandTable
	Renderer     *view.Renderer
	Messaging    messaging.Client
	Destinations Destinations
	ChatGreeting string
	Metrics      *metrics.Registry
	Now          func() time.Time
}

// Destinations are the chat numbers each kind of message is sent to.
type Destinations struct {
	Order   string
	Contact string
	Chat    string
}

// Handlers exposes HTTP handlers for the pricing page and its fragments.
type Handlers struct {
	deps Dependencies
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Renderer == nil {
		deps.Renderer = view.New()
	}
	if deps.Sessions == nil {
		deps.Sessions = pagesession.NewStore()
	}
	if deps.Catalog == nil {
		deps.Catalog = &catalog.Catalog{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handlers{deps: deps}
}

// Page renders the pricing page with a fresh selection.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	sess := h.deps.Sessions.Open(h.deps.Catalog.AddonDecls())
	if h.deps.Metrics != nil {
		h.deps.Metrics.Sessions.Set(float64(h.deps.Sessions.Len()))
	}
	h.renderPage(w, r, http.StatusOK, sess, view.ContactData{})
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, sess *pagesession.Session, contactData view.ContactData) {
	token := custommw.CSRFTokenFromContext(r.Context())
	contactData.CSRFToken = token
	contactData.Services = h.services()

	data := view.PageData{
		Title:     h.deps.Title,
		CSRFToken: token,
		SessionID: sess.ID(),
		Year:      format.Year(h.deps.Now()),
		Packages:  h.deps.Catalog.Packages(),
		Addons:    view.AddonCards(sess.ID(), sess.Snapshot(), h.deps.Catalog.Addons()),
		Contact:   contactData,
	}
	var buf bytes.Buffer
	if err := h.deps.Renderer.Page(&buf, data); err != nil {
		observability.FromContext(r.Context()).Error("render page failed", zap.Error(err))
		httpx.Write(r.Context(), w, err)
		return
	}
	writeHTML(w, status, &buf)
}

func (h *Handlers) services() []string {
	pkgs := h.deps.Catalog.Packages()
	out := make([]string, 0, len(pkgs)+1)
	for _, p := range pkgs {
		out = append(out, p.Name)
	}
	return append(out, otherService)
}

// ToggleAddon handles a click inside an add-on card.
func (h *Handlers) ToggleAddon(w http.ResponseWriter, r *http.Request) {
	h.handleAddon(w, r, func(index int) order.Intent {
		return order.ToggleAddon{Index: index, Region: order.ParseRegion(r.PostFormValue("region"))}
	})
}

// SetAddon handles the checkbox change event.
func (h *Handlers) SetAddon(w http.ResponseWriter, r *http.Request) {
	h.handleAddon(w, r, func(index int) order.Intent {
		checked, _ := strconv.ParseBool(r.PostFormValue("checked"))
		return order.SetAddon{Index: index, Checked: checked}
	})
}

func (h *Handlers) handleAddon(w http.ResponseWriter, r *http.Request, decode func(index int) order.Intent) {
	ctx := r.Context()
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		httpx.Write(ctx, w, fmt.Errorf("%w: add-on index %q", httpx.ErrInvalidRequest, raw))
		return
	}

	in := decode(index)
	var out order.Outcome
	err = sess.Do(func(reg *order.Registry) error {
		var herr error
		out, herr = h.deps.Commands.Handle(ctx, reg, in)
		return herr
	})
	if err != nil {
		if !errors.Is(err, order.ErrUnknownAddon) {
			observability.FromContext(ctx).Error("addon intent failed", zap.Error(err))
		}
		httpx.Write(ctx, w, err)
		return
	}

	if out.Changed {
		h.deps.Metrics.ObserveToggle(out.Entry.ID, out.Entry.Selected)
		observability.FromContext(ctx).Debug("addon selection changed",
			zap.String("addon", out.Entry.ID),
			zap.Bool("selected", out.Entry.Selected),
		)
	}

	card := view.AddonCard{SessionID: sess.ID(), Index: index, Entry: out.Entry, Description: h.addonDescription(out.Entry.ID)}
	h.fragment(w, r, http.StatusOK, view.FragmentAddonCard, card)
}

func (h *Handlers) addonDescription(id string) template.HTML {
	for _, a := range h.deps.Catalog.Addons() {
		if a.ID == id {
			return a.Description
		}
	}
	return ""
}

// PlaceOrder dispatches the order for the posted package control.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	control := order.PackageControl{
		Name:  r.PostFormValue("package-name"),
		Price: r.PostFormValue("package-price"),
	}

	rec := &messaging.Recorder{}
	launchCtx := messaging.WithOpener(ctx, rec)
	var out order.Outcome
	err := sess.Do(func(reg *order.Registry) error {
		var herr error
		out, herr = h.deps.Commands.Handle(launchCtx, reg, order.PlaceOrder{Control: control})
		return herr
	})
	if errors.Is(err, order.ErrMalformedPrice) {
		if h.deps.Metrics != nil {
			h.deps.Metrics.DispatchRejected.Inc()
		}
		observability.FromContext(ctx).Warn("order rejected", zap.String("package", control.Name), zap.Error(err))
		httpx.WriteError(ctx, w, httpx.FromError(err).With("package", control.Name))
		return
	}
	if err == nil && out.Order == nil {
		err = fmt.Errorf("%w: no order result", order.ErrUnhandledIntent)
	}
	if err != nil {
		observability.FromContext(ctx).Error("order dispatch failed", zap.Error(err))
		httpx.Write(ctx, w, err)
		return
	}

	res := out.Order
	if h.deps.Metrics != nil {
		h.deps.Metrics.Dispatches.Inc()
		h.deps.Metrics.DispatchTotal.Observe(float64(res.Selection.Total))
	}
	link := h.link(rec, h.deps.Destinations.Order, res.Encoded)
	observability.FromContext(ctx).Info("order dispatched",
		zap.String("package", res.Selection.Package.Name),
		zap.Int("addons", len(res.Selection.Addons)),
		zap.Int64("total", res.Selection.Total),
	)

	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, link, http.StatusSeeOther)
		return
	}
	if err := custommw.Trigger(w, LaunchEvent, map[string]string{"url": link}); err != nil {
		observability.FromContext(ctx).Warn("set launch trigger failed", zap.Error(err))
	}
	h.fragment(w, r, http.StatusOK, view.FragmentOrderSummary, view.OrderSummary{
		Selection: res.Selection,
		Message:   res.Message,
		URL:       link,
	})
}

// Contact validates the contact form and hands it to the chat application.
func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		httpx.Write(ctx, w, fmt.Errorf("%w: %v", httpx.ErrInvalidRequest, err))
		return
	}

	rec := &messaging.Recorder{}
	out, err := h.deps.Commands.Handle(messaging.WithOpener(ctx, rec), nil, contact.Submit{Form: contact.FormFromValues(r.PostForm)})
	sent, _ := out.Payload.(contact.Sent)
	token := custommw.CSRFTokenFromContext(ctx)

	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		h.observeContact("invalid")
		data := view.ContactData{CSRFToken: token, Form: sent.Form, Errors: verr, Services: h.services()}
		if custommw.IsHTMXRequest(ctx) {
			h.fragment(w, r, http.StatusOK, view.FragmentContact, data)
			return
		}
		sess := h.deps.Sessions.Open(h.deps.Catalog.AddonDecls())
		h.renderPage(w, r, http.StatusUnprocessableEntity, sess, data)
		return
	case err != nil:
		observability.FromContext(ctx).Error("contact submit failed", zap.Error(err))
		httpx.Write(ctx, w, err)
		return
	}

	h.observeContact("sent")
	link := h.link(rec, h.deps.Destinations.Contact, sent.Encoded)
	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, link, http.StatusSeeOther)
		return
	}
	if err := custommw.Trigger(w, LaunchEvent, map[string]string{"url": link}); err != nil {
		observability.FromContext(ctx).Warn("set launch trigger failed", zap.Error(err))
	}
	h.fragment(w, r, http.StatusOK, view.FragmentContact, view.ContactData{CSRFToken: token, Services: h.services(), URL: link})
}

func (h *Handlers) observeContact(result string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.Contacts.WithLabelValues(result).Inc()
	}
}

// Chat redirects to a generic chat with the configured greeting.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec := &messaging.Recorder{}
	out, err := h.deps.Commands.Handle(messaging.WithOpener(ctx, rec), nil, contact.OpenChat{Greeting: h.deps.ChatGreeting})
	if err != nil {
		observability.FromContext(ctx).Error("open chat failed", zap.Error(err))
		httpx.Write(ctx, w, err)
		return
	}
	sent, _ := out.Payload.(contact.Sent)
	if h.deps.Metrics != nil {
		h.deps.Metrics.ChatLaunches.Inc()
	}
	http.Redirect(w, r, h.link(rec, h.deps.Destinations.Chat, sent.Encoded), http.StatusFound)
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// link returns the deep link the launcher opened, rebuilding it when the launch failed.
func (h *Handlers) link(rec *messaging.Recorder, destination, encoded string) string {
	if l := rec.Last(); l != "" {
		return l
	}
	return h.deps.Messaging.URL(destination, encoded)
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*pagesession.Session, bool) {
	sess, err := h.deps.Sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		if custommw.IsHTMXRequest(r.Context()) {
			w.Header().Set("HX-Refresh", "true")
		}
		httpx.Write(r.Context(), w, err)
		return nil, false
	}
	return sess, true
}

func (h *Handlers) fragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.deps.Renderer.Fragment(&buf, name, data); err != nil {
		observability.FromContext(r.Context()).Error("render fragment failed", zap.String("fragment", name), zap.Error(err))
		httpx.Write(r.Context(), w, err)
		return
	}
	writeHTML(w, status, &buf)
}

func writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
