// Package config loads server settings with viper and locates the CLI
// credential files in the XDG configuration directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "tasklr"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// ProductionEnv is the environment name that turns on secure cookies.
	ProductionEnv = "production"
)

// Config holds all settings of the server and the CLI.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Environment EnvironmentConfig
	HTTPServer  HTTPServerConfig
	Logger      LoggerConfig
	Google      GoogleConfig
	Session     SessionConfig
	Aggregate   AggregateConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port            int
	Mode            string
	BaseURL         string
	PublicDir       string
	ViewsDir        string
	AllowTestRoutes bool
	AllowedOrigins  []string
	RateLimitPerMin int
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	MaxEntries int
}

type AggregateConfig struct {
	PageSize      int64
	MaxPages      int
	Concurrency   int
	LenientExport bool
}

// DevSessionSecret signs cookies when no secret is configured outside production.
const DevSessionSecret = "dev-secret-change-in-prod"

// Load reads config.yaml from configDir, ./config and the working directory,
// then applies environment overrides. A missing file is not an error.
// If configDir is empty, the XDG directory is used.
func Load(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{Dir: dir}

	cfg.Environment.Name = strings.ToLower(v.GetString("environment.name"))

	cfg.HTTPServer.Port = v.GetInt("http_server.port")
	cfg.HTTPServer.Mode = v.GetString("http_server.mode")
	cfg.HTTPServer.BaseURL = strings.TrimRight(v.GetString("http_server.base_url"), "/")
	if cfg.HTTPServer.BaseURL == "" {
		cfg.HTTPServer.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.HTTPServer.Port)
	}
	cfg.HTTPServer.PublicDir = v.GetString("http_server.public_dir")
	cfg.HTTPServer.ViewsDir = v.GetString("http_server.views_dir")
	cfg.HTTPServer.AllowTestRoutes = v.GetBool("http_server.allow_test_routes")
	cfg.HTTPServer.AllowedOrigins = splitList(v.GetStringSlice("http_server.allowed_origins"))
	cfg.HTTPServer.RateLimitPerMin = v.GetInt("http_server.rate_limit_per_min")

	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	cfg.Google.ClientID = v.GetString("google.client_id")
	cfg.Google.ClientSecret = v.GetString("google.client_secret")

	cfg.Session.Secret = v.GetString("session.secret")
	cfg.Session.TTL = v.GetDuration("session.ttl")
	cfg.Session.CookieName = v.GetString("session.cookie_name")
	cfg.Session.MaxEntries = v.GetInt("session.max_entries")

	cfg.Aggregate.PageSize = v.GetInt64("aggregate.page_size")
	cfg.Aggregate.MaxPages = v.GetInt("aggregate.max_pages")
	cfg.Aggregate.Concurrency = v.GetInt("aggregate.concurrency")
	cfg.Aggregate.LenientExport = v.GetBool("aggregate.lenient_export")

	return cfg, nil
}

// bindEnv maps the conventional deployment variables onto config keys.
// Keys not listed here are still reachable as upper-cased paths, e.g.
// HTTP_SERVER_RATE_LIMIT_PER_MIN.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"environment.name":              {"ENVIRONMENT", "NODE_ENV"},
		"http_server.port":              {"PORT"},
		"http_server.base_url":          {"BASE_URL"},
		"http_server.allow_test_routes": {"ALLOW_TEST_ROUTES"},
		"http_server.allowed_origins":   {"ALLOWED_ORIGINS"},
		"logger.level":                  {"LOG_LEVEL"},
		"google.client_id":              {"GOOGLE_CLIENT_ID"},
		"google.client_secret":          {"GOOGLE_CLIENT_SECRET"},
		"session.secret":                {"SESSION_SECRET"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment.name", "development")
	v.SetDefault("http_server.port", 3000)
	v.SetDefault("http_server.mode", "release")
	v.SetDefault("http_server.public_dir", "public")
	v.SetDefault("http_server.views_dir", "views")
	v.SetDefault("http_server.allow_test_routes", false)
	v.SetDefault("http_server.rate_limit_per_min", 120)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", "production")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", false)
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.cookie_name", "tasklr_session")
	v.SetDefault("session.max_entries", 10000)
	v.SetDefault("aggregate.page_size", 100)
	v.SetDefault("aggregate.max_pages", 1000)
	v.SetDefault("aggregate.concurrency", 8)
	v.SetDefault("aggregate.lenient_export", false)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment.Name == ProductionEnv
}

// CallbackURL returns the OAuth redirect URL of the web flow.
func (c *Config) CallbackURL() string {
	return c.HTTPServer.BaseURL + "/auth/callback"
}

// SessionSecret returns the cookie signing secret, falling back to a fixed
// development secret outside production.
func (c *Config) SessionSecret() string {
	if c.Session.Secret == "" && !c.IsProduction() {
		return DevSessionSecret
	}
	return c.Session.Secret
}

// ValidateServer checks the settings the web server cannot start without.
func (c *Config) ValidateServer() error {
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTPServer.Port)
	}
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.IsProduction() && c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
