package quotemill

import "time"

// Config holds all configuration for a quotemill instance.
type Config struct {
	Name        string // Site name for feeds and embed pages (default "Quotemill")
	URL         string // Canonical base URL (default "http://localhost:3000")
	Description string // Site description for RSS channels
	Author      string // Fallback attribution when an item names no author

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/quotemill.db")
	ShareRoot    string // Root directory for rendered artifacts (default "shared")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	TokenSecret   string // Required: HMAC secret for API bearer tokens
	CookieSecure  bool   // Set true for HTTPS

	PollInterval   time.Duration // Worker sleep when the queue is empty (default 5s)
	StuckRenderAge time.Duration // Age after which a claimed item is requeued (default 30min)
	TokenCacheTTL  time.Duration // Verified-token cache TTL (default 5min)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Quotemill"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/quotemill.db"
	}
	if c.ShareRoot == "" {
		c.ShareRoot = "shared"
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.StuckRenderAge == 0 {
		c.StuckRenderAge = 30 * time.Minute
	}
	if c.TokenCacheTTL == 0 {
		c.TokenCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithTypes registers additional content type definitions beyond the
// built-in quote type. Registration happens once during Start; a duplicate
// type name is a configuration error and Start fails.
func WithTypes(defs ...TypeDefinition) Option {
	return func(a *App) {
		a.extraTypes = append(a.extraTypes, defs...)
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
