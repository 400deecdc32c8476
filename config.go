package folio

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/resource"
)

// Gateway drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// SiteConfig holds all configuration for a folio site. Every field can be
// set from a YAML file and overridden by the FOLIO_* variable in its env tag.
type SiteConfig struct {
	Name        string `yaml:"name" env:"FOLIO_SITE_NAME"`               // default "Portfolio"
	URL         string `yaml:"url" env:"FOLIO_SITE_URL"`                 // default "http://localhost:3000"
	Description string `yaml:"description" env:"FOLIO_SITE_DESCRIPTION"` // RSS and meta tags
	Author      string `yaml:"author" env:"FOLIO_SITE_AUTHOR"`           // JSON-LD person

	Addr string `yaml:"addr" env:"FOLIO_ADDR"` // default ":3000"

	Driver        string `yaml:"driver" env:"FOLIO_DRIVER"`                 // sqlite (default) or redis
	DatabasePath  string `yaml:"database_path" env:"FOLIO_DATABASE_PATH"`   // default "data/folio.db"
	RedisAddr     string `yaml:"redis_addr" env:"FOLIO_REDIS_ADDR"`         // default "localhost:6379"
	RedisPassword string `yaml:"redis_password" env:"FOLIO_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"FOLIO_REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" env:"FOLIO_REDIS_PREFIX"`     // default "folio:"

	MediaDir      string `yaml:"media_dir" env:"FOLIO_MEDIA_DIR"`           // default "data/media"
	MediaBaseURL  string `yaml:"media_base_url" env:"FOLIO_MEDIA_BASE_URL"` // default URL + "/media"
	MaxUploadSize int64  `yaml:"max_upload_size" env:"FOLIO_MAX_UPLOAD_SIZE"`

	AdminUsername     string `yaml:"admin_username" env:"FOLIO_ADMIN_USERNAME"`           // default "admin"
	AdminPasswordHash string `yaml:"admin_password_hash" env:"FOLIO_ADMIN_PASSWORD_HASH"` // required, bcrypt
	SessionSecret     string `yaml:"session_secret" env:"FOLIO_SESSION_SECRET"`           // required
	CookieSecure      bool   `yaml:"cookie_secure" env:"FOLIO_COOKIE_SECURE"`

	CacheTTL time.Duration `yaml:"cache_ttl" env:"FOLIO_CACHE_TTL"` // default 5m

	LogLevel  string `yaml:"log_level" env:"FOLIO_LOG_LEVEL"` // default "info"
	LogPretty bool   `yaml:"log_pretty" env:"FOLIO_LOG_PRETTY"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = "folio:"
	}
	if c.MediaDir == "" {
		c.MediaDir = "data/media"
	}
	if c.MediaBaseURL == "" {
		c.MediaBaseURL = c.URL + "/media"
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = resource.DefaultMaxUploadSize
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// validate checks the settings Start cannot run without.
func (c *SiteConfig) validate() error {
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("admin_password_hash is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("session_secret is required")
	}
	switch c.Driver {
	case DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if !strings.HasPrefix(c.MediaBaseURL, "http://") && !strings.HasPrefix(c.MediaBaseURL, "https://") {
		return fmt.Errorf("media_base_url must be an absolute URL, got %q", c.MediaBaseURL)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// LoadConfig reads the YAML file at path, if it exists, then applies
// FOLIO_* environment overrides and defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}
	if err := loadFromEnv(&cfg); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

// loadFromEnv overrides fields whose env variable is set.
func loadFromEnv(cfg *SiteConfig) error {
	val := reflect.ValueOf(cfg).Elem()
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		key := typ.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := setField(val.Field(i), raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithGateway replaces the gateway Start would open from the config.
func WithGateway(gw resource.Gateway) Option {
	return func(a *App) {
		a.Gateway = gw
	}
}

// WithBlobStore replaces the local media store.
func WithBlobStore(bs resource.BlobStore) Option {
	return func(a *App) {
		a.Blobs = bs
	}
}

// WithLogger replaces the logger built from the config.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
		a.customLogger = true
	}
}
