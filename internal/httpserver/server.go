package httpserver

import (
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/contact"
	"github.com/haikalarif/portofolio-freelance/internal/format"
	custommw "github.com/haikalarif/portofolio-freelance/internal/httpserver/middleware"
	"github.com/haikalarif/portofolio-freelance/internal/httpserver/ui"
	"github.com/haikalarif/portofolio-freelance/internal/messaging"
	"github.com/haikalarif/portofolio-freelance/internal/metrics"
	"github.com/haikalarif/portofolio-freelance/internal/order"
	"github.com/haikalarif/portofolio-freelance/internal/pagesession"
	"github.com/haikalarif/portofolio-freelance/internal/platform/config"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
	"github.com/haikalarif/portofolio-freelance/internal/view"
	"github.com/haikalarif/portofolio-freelance/public"
)

// Config holds runtime options for the site HTTP server.
type Config struct {
	Address        string
	Title          string
	Catalog        *catalog.Catalog
	Sessions       *pagesession.Store
	Renderer       *view.Renderer
	Formatter      *format.Formatter
	Messaging      config.MessagingConfig
	Metrics        *metrics.Registry
	Logger         *zap.Logger
	AssetsDir      string
	SecureCookies  bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	if cfg.Formatter == nil {
		cfg.Formatter = format.Rupiah()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = view.New(view.WithFormatter(cfg.Formatter))
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(cfg.Logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(cfg.RequestTimeout))
	router.Use(chimw.Compress(5, "text/html", "text/css", "application/javascript", "application/json"))

	router.Handle("/assets/*", http.StripPrefix("/assets", assets(cfg.AssetsDir)))
	router.Get("/metrics", cfg.Metrics.Handler().ServeHTTP)

	client := messaging.NewClient(cfg.Messaging.Host)
	handlers := ui.NewHandlers(ui.Dependencies{
		Title:     cfg.Title,
		Catalog:   cfg.Catalog,
		Sessions:  cfg.Sessions,
		Commands:  NewCommandTable(client, cfg.Messaging, cfg.Formatter),
		Renderer:  cfg.Renderer,
		Messaging: client,
		Destinations: ui.Destinations{
			Order:   cfg.Messaging.OrderDestination,
			Contact: cfg.Messaging.ContactDestination,
			Chat:    cfg.Messaging.ChatDestination,
		},
		ChatGreeting: cfg.Messaging.ChatGreeting,
		Metrics:      cfg.Metrics,
	})

	router.Get("/healthz", handlers.Healthz)

	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.CSRF(custommw.CSRFConfig{Secure: cfg.SecureCookies}))

		r.Get("/", handlers.Page)
		r.Get("/chat", handlers.Chat)
		r.Post("/contact", handlers.Contact)
		r.Route("/s/{session}", func(r chi.Router) {
			r.Post("/addons/{index}/toggle", handlers.ToggleAddon)
			r.Post("/addons/{index}", handlers.SetAddon)
			r.Post("/order", handlers.PlaceOrder)
		})
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 120*time.Second),
	}
}

// NewCommandTable wires every page intent to the shared deep-link launcher.
func NewCommandTable(client messaging.Client, dest config.MessagingConfig, money *format.Formatter) *order.CommandTable {
	launcher := messaging.NewLauncher(client)
	dispatcher := order.NewDispatcher(launcher, dest.OrderDestination, order.WithFormatter(money))
	table := order.NewCommandTable(dispatcher)
	table.Register(order.KindSubmitContact, contact.SubmitHandler(launcher, dest.ContactDestination))
	table.Register(order.KindOpenChat, contact.ChatHandler(launcher, dest.ChatDestination))
	return table
}

// assets serves the embedded bundle with cache validators. A dev dir is served uncached.
func assets(dir string) http.Handler {
	if dir != "" {
		return http.FileServer(http.FS(os.DirFS(dir)))
	}
	sub, err := fs.Sub(public.Assets, "assets")
	if err != nil {
		panic(err)
	}
	return custommw.AssetsWithCache(sub)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
