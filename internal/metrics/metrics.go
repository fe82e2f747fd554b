// Package metrics exposes the site counters on a dedicated Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the site collectors. Fields are safe for concurrent use.
type Registry struct {
	reg              *prometheus.Registry
	AddonToggles     *prometheus.CounterVec
	Dispatches       prometheus.Counter
	DispatchRejected prometheus.Counter
	DispatchTotal    prometheus.Histogram
	CatalogSkipped   *prometheus.CounterVec
	Contacts         *prometheus.CounterVec
	ChatLaunches     prometheus.Counter
	Sessions         prometheus.Gauge
}

// NewRegistry registers the site collectors alongside the Go and process collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	toggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_addon_toggles_total",
		Help: "Add-on selection changes by add-on id and new state.",
	}, []string{"addon", "state"})
	dispatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_order_dispatches_total",
		Help: "Orders composed and handed to the messaging app.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_order_rejected_total",
		Help: "Orders refused because the package price was malformed or the total overflowed.",
	})
	totals := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_order_total_rupiah",
		Help:    "Estimated order totals.",
		Buckets: prometheus.ExponentialBuckets(500000, 2, 8),
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_catalog_skipped_total",
		Help: "Catalog entries dropped at load by section and offending field.",
	}, []string{"section", "field"})
	contacts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_contact_submissions_total",
		Help: "Contact form submissions by result (sent or invalid).",
	}, []string{"result"})
	chats := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_chat_launches_total",
		Help: "Generic chat links opened.",
	})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_page_sessions",
		Help: "Live page sessions holding an add-on selection.",
	})

	r.MustRegister(toggles, dispatches, rejected, totals, skipped, contacts, chats, sessions,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Registry{
		reg:              r,
		AddonToggles:     toggles,
		Dispatches:       dispatches,
		DispatchRejected: rejected,
		DispatchTotal:    totals,
		CatalogSkipped:   skipped,
		Contacts:         contacts,
		ChatLaunches:     chats,
		Sessions:         sessions,
	}
}

// ObserveToggle records a selection change.
func (r *Registry) ObserveToggle(addonID string, selected bool) {
	if r == nil {
		return
	}
	state := "off"
	if selected {
		state = "on"
	}
	r.AddonToggles.WithLabelValues(addonID, state).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
