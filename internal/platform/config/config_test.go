package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Site.CatalogPath != defaultCatalogPath {
		t.Errorf("unexpected catalog path: %s", cfg.Site.CatalogPath)
	}
	if cfg.Site.DevMode {
		t.Errorf("expected dev mode off by default")
	}
	if cfg.Messaging.Host != "wa.me" {
		t.Errorf("unexpected messaging host: %s", cfg.Messaging.Host)
	}
	if cfg.Messaging.OrderDestination != "6282119904581" {
		t.Errorf("unexpected order destination: %s", cfg.Messaging.OrderDestination)
	}
	if cfg.Messaging.ContactDestination != "62821199045813" {
		t.Errorf("unexpected contact destination: %s", cfg.Messaging.ContactDestination)
	}
	if cfg.Messaging.ChatDestination != "6281234567890" {
		t.Errorf("unexpected chat destination: %s", cfg.Messaging.ChatDestination)
	}
	if cfg.Session.TTL != defaultSessionTTL {
		t.Errorf("unexpected session ttl: %s", cfg.Session.TTL)
	}
	if cfg.Session.MaxSessions != defaultSessionMax {
		t.Errorf("unexpected session cap: %d", cfg.Session.MaxSessions)
	}
	if cfg.Format.Locale != "id" || cfg.Format.Symbol != "Rp" {
		t.Errorf("unexpected format config: %+v", cfg.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"PORTFOLIO_SERVER_PORT":                 "9090",
		"PORTFOLIO_SERVER_READ_TIMEOUT":         "5s",
		"PORTFOLIO_SITE_DEV":                    "yes",
		"PORTFOLIO_LOG_LEVEL":                   "DEBUG",
		"PORTFOLIO_MESSAGING_ORDER_DESTINATION": "+62 821-1990-4581",
		"PORTFOLIO_SESSION_TTL":                 "30m",
		"PORTFOLIO_FORMAT_LOCALE":               "en",
		"PORTFOLIO_SESSION_CLEANUP_INTERVAL":    "not-a-duration",
		"PORTFOLIO_SESSION_MAX":                 "500",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout override, got %s", cfg.Server.ReadTimeout)
	}
	if !cfg.Site.DevMode {
		t.Errorf("expected dev mode on")
	}
	if cfg.Site.LogLevel != "debug" {
		t.Errorf("expected lower-cased log level, got %s", cfg.Site.LogLevel)
	}
	if cfg.Messaging.OrderDestination != "6282119904581" {
		t.Errorf("expected separators stripped, got %s", cfg.Messaging.OrderDestination)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("expected session ttl override, got %s", cfg.Session.TTL)
	}
	if cfg.Session.CleanupInterval != defaultSessionCleanup {
		t.Errorf("expected invalid duration to fall back, got %s", cfg.Session.CleanupInterval)
	}
	if cfg.Session.MaxSessions != 500 {
		t.Errorf("expected session cap override, got %d", cfg.Session.MaxSessions)
	}
	if cfg.Format.Locale != "en" {
		t.Errorf("expected locale override, got %s", cfg.Format.Locale)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# local\nexport PORTFOLIO_SERVER_PORT=7000\nPORTFOLIO_SITE_TITLE=\"From File\"\nPORTFOLIO_FORMAT_SYMBOL='IDR'\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(envFile), WithoutSystemEnv(), WithEnvMap(map[string]string{
		"PORTFOLIO_SERVER_PORT": "7100",
	}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7100" {
		t.Errorf("expected env map to win over .env, got %s", cfg.Server.Port)
	}
	if cfg.Site.Title != "From File" {
		t.Errorf("expected title from .env, got %s", cfg.Site.Title)
	}
	if cfg.Format.Symbol != "IDR" {
		t.Errorf("expected symbol from .env, got %s", cfg.Format.Symbol)
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"PORTFOLIO_MESSAGING_CHAT_DESTINATION": "call-me",
		"PORTFOLIO_SESSION_TTL":                "-1m",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := verr.Fields()
	if len(fields) != 2 || fields[0] != "Messaging.ChatDestination" || fields[1] != "Session.TTL" {
		t.Errorf("unexpected fields: %v", fields)
	}
}
