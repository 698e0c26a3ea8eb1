package insighthub

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix namespaces environment overrides: INSIGHTHUB_SESSION_SECRET
// sets session_secret, and a double underscore maps to a key separator.
const EnvPrefix = "INSIGHTHUB_"

// SiteConfig holds all configuration for an insighthub site.
type SiteConfig struct {
	Name        string `koanf:"name"` // Site name (default "InsightHub")
	URL         string `koanf:"url" validate:"required,url"`
	Description string `koanf:"description"` // RSS and meta description
	Author      string `koanf:"author"`      // JSON-LD author

	Addr         string `koanf:"addr"`          // Listen address (default ":3000")
	DatabasePath string `koanf:"database_path"` // SQLite path (default "data/insighthub.db")
	StaticDir    string `koanf:"static_dir"`    // Public assets and uploads (default "public")
	LogDir       string `koanf:"log_dir"`       // Rotated JSON logs (default "logs")

	AdminEmail        string `koanf:"admin_email" validate:"required,mailbox"`
	AdminPasswordHash string `koanf:"admin_password_hash" validate:"required_without=AdminPassword"`
	AdminPassword     string `koanf:"admin_password"` // bootstrap only; hashed on startup
	SessionSecret     string `koanf:"session_secret" validate:"required,min=32"`
	CookieSecure      bool   `koanf:"cookie_secure"` // Set true for HTTPS

	SidebarCacheTTL time.Duration `koanf:"sidebar_cache_ttl"` // default 5m
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "InsightHub"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Insights on technology, lifestyle, business, health, and travel."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/insighthub.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.SidebarCacheTTL == 0 {
		c.SidebarCacheTTL = 5 * time.Minute
	}
	c.URL = strings.TrimRight(c.URL, "/")
	c.AdminEmail = normalizeEmail(c.AdminEmail)
}

// Validate applies defaults and checks required settings.
func (c *SiteConfig) Validate() error {
	c.setDefaults()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LoadConfig builds a SiteConfig from three layers, highest precedence last:
// an optional .env file, the optional YAML file at path, and INSIGHTHUB_
// environment variables. Defaults fill what is left, then the result is
// validated.
func LoadConfig(path string) (SiteConfig, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", path, "err", err)
			return SiteConfig{}, fmt.Errorf("config: load %s: %w", path, err)
		}
		zap.S().Debugw("config yaml loaded", "file", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("config: env overlay: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore makes the App use an already opened store instead of opening
// Config.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithLogger sets the structured logger (default zap.S()).
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *App) {
		a.Log = l
	}
}
