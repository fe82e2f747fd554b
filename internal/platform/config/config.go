package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	envPrefix               = "PORTFOLIO_"
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultRequestTimeout   = 30 * time.Second
	defaultCatalogPath      = "catalog.yaml"
	defaultLogLevel         = "info"
	defaultSiteTitle        = "Haikal Arif | Jasa Pembuatan Website"
	defaultMessagingHost    = "wa.me"
	defaultOrderDestination = "6282119904581"
	defaultContactDest      = "62821199045813"
	defaultChatDestination  = "6281234567890"
	defaultChatGreeting     = "Halo, saya tertarik dengan layanan pembuatan website Anda."
	defaultSessionTTL       = 2 * time.Hour
	defaultSessionCleanup   = 10 * time.Minute
	defaultSessionMax       = 10000
	defaultFormatLocale     = "id"
	defaultFormatSymbol     = "Rp"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Messaging MessagingConfig
	Session   SessionConfig
	Format    FormatConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// SiteConfig describes the rendered page.
type SiteConfig struct {
	Title       string
	CatalogPath string
	AssetsDir   string
	DevMode     bool
	LogLevel    string
}

// MessagingConfig holds the chat host and the destination for each kind of message.
type MessagingConfig struct {
	Host               string
	OrderDestination   string
	ContactDestination string
	ChatDestination    string
	ChatGreeting       string
}

// SessionConfig controls page session lifetime.
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	MaxSessions     int
}

// FormatConfig selects the currency presentation.
type FormatConfig struct {
	Locale string
	Symbol string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides and environment variables.
// Keys are read with the PORTFOLIO_ prefix.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           stringWithDefault(lookup, "SERVER_PORT", defaultPort),
			ReadTimeout:    durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "SERVER_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Site: SiteConfig{
			Title:       stringWithDefault(lookup, "SITE_TITLE", defaultSiteTitle),
			CatalogPath: stringWithDefault(lookup, "SITE_CATALOG_PATH", defaultCatalogPath),
			AssetsDir:   stringWithDefault(lookup, "SITE_ASSETS_DIR", ""),
			DevMode:     boolWithDefault(lookup, "SITE_DEV", false),
			LogLevel:    strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
		Messaging: MessagingConfig{
			Host:               stringWithDefault(lookup, "MESSAGING_HOST", defaultMessagingHost),
			OrderDestination:   digitsWithDefault(lookup, "MESSAGING_ORDER_DESTINATION", defaultOrderDestination),
			ContactDestination: digitsWithDefault(lookup, "MESSAGING_CONTACT_DESTINATION", defaultContactDest),
			ChatDestination:    digitsWithDefault(lookup, "MESSAGING_CHAT_DESTINATION", defaultChatDestination),
			ChatGreeting:       stringWithDefault(lookup, "MESSAGING_CHAT_GREETING", defaultChatGreeting),
		},
		Session: SessionConfig{
			TTL:             durationWithDefault(lookup, "SESSION_TTL", defaultSessionTTL),
			CleanupInterval: durationWithDefault(lookup, "SESSION_CLEANUP_INTERVAL", defaultSessionCleanup),
			MaxSessions:     intWithDefault(lookup, "SESSION_MAX", defaultSessionMax),
		},
		Format: FormatConfig{
			Locale: stringWithDefault(lookup, "FORMAT_LOCALE", defaultFormatLocale),
			Symbol: stringWithDefault(lookup, "FORMAT_SYMBOL", defaultFormatSymbol),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Site.CatalogPath) == "" {
		missing = append(missing, "Site.CatalogPath")
	}
	if cfg.Messaging.OrderDestination == "" {
		missing = append(missing, "Messaging.OrderDestination")
	}
	if cfg.Messaging.ContactDestination == "" {
		missing = append(missing, "Messaging.ContactDestination")
	}
	if cfg.Messaging.ChatDestination == "" {
		missing = append(missing, "Messaging.ChatDestination")
	}
	if cfg.Session.TTL <= 0 {
		missing = append(missing, "Session.TTL")
	}
	if cfg.Session.CleanupInterval <= 0 {
		missing = append(missing, "Session.CleanupInterval")
	}
	if cfg.Session.MaxSessions <= 0 {
		missing = append(missing, "Session.MaxSessions")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

// digitsWithDefault reads a phone-style destination, dropping '+' and separators. A value
// with no digits at all is reported as empty so validation catches it.
func digitsWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	raw := stringWithDefault(lookup, key, fallback)
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+', r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return ""
		}
	}
	return b.String()
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
