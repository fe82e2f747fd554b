package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/format"
	"github.com/haikalarif/portofolio-freelance/internal/httpserver"
	"github.com/haikalarif/portofolio-freelance/internal/metrics"
	"github.com/haikalarif/portofolio-freelance/internal/pagesession"
	"github.com/haikalarif/portofolio-freelance/internal/platform/config"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
	"github.com/haikalarif/portofolio-freelance/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Site.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cat, err := catalog.LoadFile(cfg.Site.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.String("path", cfg.Site.CatalogPath), zap.Error(err))
	}

	reg := metrics.NewRegistry()
	for _, issue := range cat.Skipped() {
		reg.CatalogSkipped.WithLabelValues(issue.Section, issue.Field).Inc()
		logger.Warn("catalog entry skipped",
			zap.String("section", issue.Section),
			zap.Int("index", issue.Index),
			zap.String("id", issue.ID),
			zap.String("field", issue.Field),
			zap.String("value", issue.Value),
			zap.Error(issue.Err),
		)
	}
	logger.Info("catalog loaded",
		zap.Int("packages", len(cat.Packages())),
		zap.Int("addons", len(cat.Addons())),
		zap.Int("skipped", len(cat.Skipped())),
	)

	money := format.Parse(cfg.Format.Locale, cfg.Format.Symbol)
	renderOpts := []view.Option{view.WithFormatter(money)}
	if cfg.Site.DevMode {
		renderOpts = append(renderOpts, view.WithDevDir(filepath.Join("internal", "view", "templates")))
	}

	sessions := pagesession.NewStore(
		pagesession.WithTTL(cfg.Session.TTL),
		pagesession.WithMaxSessions(cfg.Session.MaxSessions),
	)

	srv := httpserver.New(httpserver.Config{
		Address:        net.JoinHostPort("", cfg.Server.Port),
		Title:          cfg.Site.Title,
		Catalog:        cat,
		Sessions:       sessions,
		Renderer:       view.New(renderOpts...),
		Formatter:      money,
		Messaging:      cfg.Messaging,
		Metrics:        reg,
		Logger:         logger,
		AssetsDir:      cfg.Site.AssetsDir,
		SecureCookies:  !cfg.Site.DevMode,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	var janitorWG sync.WaitGroup
	janitorWG.Add(1)
	go func() {
		defer janitorWG.Done()
		janitorLogger := logger.Named("pagesession")
		sessions.Run(janitorCtx, cfg.Session.CleanupInterval, func(removed, remaining int) {
			reg.Sessions.Set(float64(remaining))
			if removed > 0 {
				janitorLogger.Info("expired page sessions removed", zap.Int("count", removed), zap.Int("remaining", remaining))
			}
		})
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("portfolio server listening",
		zap.String("addr", srv.Addr),
		zap.Bool("dev_mode", cfg.Site.DevMode),
		zap.String("messaging_host", cfg.Messaging.Host),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	janitorCancel()
	janitorWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
