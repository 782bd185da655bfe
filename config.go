package bossanova

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// DefaultCookieName names the session cookie when nothing else is configured.
	DefaultCookieName = "bossanova"
	// DefaultSameSite is the SameSite policy applied when nothing else is configured.
	DefaultSameSite = "Lax"
	// DefaultCookieTTL is how long a saved session cookie lives.
	DefaultCookieTTL = 7 * 24 * time.Hour
	// DefaultLocale is the locale used when a request does not select one.
	DefaultLocale = "en_GB"
	// DefaultLocaleDir holds the per-locale dictionary files.
	DefaultLocaleDir = "resources/locales"
	// DefaultCacheKey is the shared cache key holding the dictionary record.
	DefaultCacheKey = "dictionary"
	// DefaultConnectTimeout bounds the Redis startup ping retries.
	DefaultConnectTimeout = 5 * time.Second
)

// Config is the process-wide configuration. Every field can be populated from
// the environment through LoadConfig.
type Config struct {
	Token     TokenConfig
	Translate TranslateConfig
	Cache     CacheConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Audit     AuditConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds the session token identity and key material.
//
// Secret takes precedence over LegacySecret; both mirror the deployment
// constants older installations defined.
type TokenConfig struct {
	CookieName   string        `env:"JWT_NAME"`
	Secret       string        `env:"JWT_SECRET"`
	LegacySecret string        `env:"BOSSANOVA_JWT_SECRET"`
	SameSite     string        `env:"JWT_SAMESITE"`
	CookieTTL    time.Duration `env:"JWT_COOKIE_TTL"`
}

// SigningKey returns the resolved signing key, or nil when none is configured.
func (c TokenConfig) SigningKey() []byte {
	if c.Secret != "" {
		return []byte(c.Secret)
	}
	if c.LegacySecret != "" {
		return []byte(c.LegacySecret)
	}
	return nil
}

/*
====================================
TRANSLATE CONFIG
====================================
*/

// TranslateConfig controls the response translation pass.
type TranslateConfig struct {
	Enabled       bool     `env:"TRANSLATE_ENABLED" envDefault:"true"`
	DefaultLocale string   `env:"LOCALE"`
	LocaleDir     string   `env:"LOCALE_DIR"`
	Locales       []string `env:"LOCALES" envSeparator:","`
	LocaleCookie  string   `env:"LOCALE_COOKIE" envDefault:"locale"`
	// Watch reloads a locale's dictionary when its file changes on disk.
	Watch bool `env:"LOCALE_WATCH"`
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig selects the shared dictionary cache. An empty RedisAddr keeps
// the cache in process memory; Disabled turns caching off entirely.
type CacheConfig struct {
	Disabled      bool          `env:"TRANSLATE_CACHE_DISABLED"`
	Key           string        `env:"TRANSLATE_CACHE_KEY"`
	TTL           time.Duration `env:"TRANSLATE_CACHE_TTL"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	// ConnectTimeout bounds the startup ping retries against Redis.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT"`
}

/*
====================================
LOG / METRICS CONFIG
====================================
*/

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `env:"LOG_LEVEL"`
	File  string `env:"LOG_FILE"`
}

// MetricsConfig toggles counters and the latency histogram.
type MetricsConfig struct {
	Enabled                 bool `env:"METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"METRICS_LATENCY"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls session lifecycle auditing. An empty File sends
// events to the process logger; otherwise they are written as JSON lines to
// a rotated file.
type AuditConfig struct {
	Enabled    bool   `env:"AUDIT_ENABLED"`
	BufferSize int    `env:"AUDIT_BUFFER_SIZE"`
	DropIfFull bool   `env:"AUDIT_DROP_IF_FULL" envDefault:"true"`
	File       string `env:"AUDIT_FILE"`
	// Events limits auditing to these event types. Empty records all.
	Events []string `env:"AUDIT_EVENTS" envSeparator:","`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the hard defaults. The signing secret is left empty on
// purpose: it has no safe default.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			CookieName: DefaultCookieName,
			SameSite:   DefaultSameSite,
			CookieTTL:  DefaultCookieTTL,
		},
		Translate: TranslateConfig{
			Enabled:       true,
			DefaultLocale: DefaultLocale,
			LocaleDir:     DefaultLocaleDir,
			LocaleCookie:  "locale",
		},
		Cache: CacheConfig{
			Key:            DefaultCacheKey,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Log: LogConfig{
			Level: "info",
			File:  "console",
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

// LoadConfig reads the given dotenv files (missing files are ignored) and then
// overlays environment variables on top of DefaultConfig.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Token.CookieName == "" {
		c.Token.CookieName = def.Token.CookieName
	}
	if c.Token.SameSite == "" {
		c.Token.SameSite = def.Token.SameSite
	}
	if c.Token.CookieTTL == 0 {
		c.Token.CookieTTL = def.Token.CookieTTL
	}
	if c.Translate.DefaultLocale == "" {
		c.Translate.DefaultLocale = def.Translate.DefaultLocale
	}
	if c.Translate.LocaleDir == "" {
		c.Translate.LocaleDir = def.Translate.LocaleDir
	}
	if c.Cache.Key == "" {
		c.Cache.Key = def.Cache.Key
	}
	if c.Cache.ConnectTimeout == 0 {
		c.Cache.ConnectTimeout = def.Cache.ConnectTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = def.Audit.BufferSize
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks field ranges. A missing signing secret is not a validation
// error here: it is reported per request by the session engine.
func (c *Config) Validate() error {
	if c.Token.CookieTTL < 0 {
		return errors.New("Token CookieTTL must be >= 0")
	}
	if strings.ContainsAny(c.Token.CookieName, " ;,=\t\r\n") {
		return errors.New("Token CookieName contains invalid characters")
	}
	if c.Token.SameSite != "" {
		if _, err := ParseSameSite(c.Token.SameSite); err != nil {
			return err
		}
	}
	if c.Cache.TTL < 0 {
		return errors.New("Cache TTL must be >= 0")
	}
	if c.Cache.RedisDB < 0 {
		return errors.New("Cache RedisDB must be >= 0")
	}
	if c.Cache.ConnectTimeout < 0 {
		return errors.New("Cache ConnectTimeout must be >= 0")
	}
	if !c.Cache.Disabled && c.Cache.Key != "" && strings.TrimSpace(c.Cache.Key) == "" {
		return errors.New("Cache Key must not be blank")
	}
	if c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}
	for _, locale := range c.Translate.Locales {
		if strings.TrimSpace(locale) == "" {
			return errors.New("Translate Locales contains an empty entry")
		}
	}
	return nil
}

// ParseSameSite maps a SameSite policy name to its net/http value.
func ParseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("%w: %q", ErrInvalidSameSite, value)
	}
}
