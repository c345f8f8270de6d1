package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasklr/internal/config"
)

var envKeys = []string{
	"ENVIRONMENT", "NODE_ENV", "PORT", "BASE_URL", "ALLOW_TEST_ROUTES", "ALLOWED_ORIGINS",
	"LOG_LEVEL", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "SESSION_SECRET",
	"HTTP_SERVER_RATE_LIMIT_PER_MIN", "AGGREGATE_LENIENT_EXPORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.HTTPServer.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.HTTPServer.Port)
	}
	if cfg.HTTPServer.BaseURL != "http://localhost:3000" {
		t.Errorf("expected derived base URL, got %q", cfg.HTTPServer.BaseURL)
	}
	if cfg.CallbackURL() != "http://localhost:3000/auth/callback" {
		t.Errorf("unexpected callback URL %q", cfg.CallbackURL())
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("expected 7 day session TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Aggregate.PageSize != 100 || cfg.Aggregate.MaxPages != 1000 || cfg.Aggregate.Concurrency != 8 {
		t.Errorf("unexpected aggregate defaults %+v", cfg.Aggregate)
	}
	if cfg.Aggregate.LenientExport {
		t.Error("expected strict export by default")
	}
	if cfg.HTTPServer.AllowTestRoutes {
		t.Error("expected test routes disabled by default")
	}
	if cfg.IsProduction() {
		t.Error("expected development environment by default")
	}
	if cfg.SessionSecret() != config.DevSessionSecret {
		t.Errorf("expected development secret, got %q", cfg.SessionSecret())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("BASE_URL", "https://tasks.example.com/")
	t.Setenv("GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "csecret")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("NODE_ENV", "Production")
	t.Setenv("ALLOW_TEST_ROUTES", "1")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HTTP_SERVER_RATE_LIMIT_PER_MIN", "5")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPServer.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.HTTPServer.Port)
	}
	if cfg.HTTPServer.BaseURL != "https://tasks.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.HTTPServer.BaseURL)
	}
	if cfg.Google.ClientID != "cid" || cfg.Google.ClientSecret != "csecret" {
		t.Errorf("unexpected google config %+v", cfg.Google)
	}
	if !cfg.IsProduction() {
		t.Error("expected NODE_ENV to select production")
	}
	if cfg.SessionSecret() != "s3cret" {
		t.Errorf("expected configured secret, got %q", cfg.SessionSecret())
	}
	if !cfg.HTTPServer.AllowTestRoutes {
		t.Error("expected ALLOW_TEST_ROUTES=1 to enable test routes")
	}
	if len(cfg.HTTPServer.AllowedOrigins) != 2 || cfg.HTTPServer.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %q", cfg.HTTPServer.AllowedOrigins)
	}
	if cfg.HTTPServer.RateLimitPerMin != 5 {
		t.Errorf("expected rate limit 5, got %d", cfg.HTTPServer.RateLimitPerMin)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("expected valid server config, got %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `
http_server:
  port: 9000
  allowed_origins:
    - https://one.example
session:
  ttl: 1h
aggregate:
  concurrency: 2
  lenient_export: true
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPServer.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.HTTPServer.Port)
	}
	if len(cfg.HTTPServer.AllowedOrigins) != 1 || cfg.HTTPServer.AllowedOrigins[0] != "https://one.example" {
		t.Errorf("unexpected origins %q", cfg.HTTPServer.AllowedOrigins)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Aggregate.Concurrency != 2 || !cfg.Aggregate.LenientExport {
		t.Errorf("unexpected aggregate config %+v", cfg.Aggregate)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http_server: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(dir); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			name: "missing google credentials",
			cfg: config.Config{
				HTTPServer: config.HTTPServerConfig{Port: 3000},
			},
			wantErr: true,
		},
		{
			name: "production without secret",
			cfg: config.Config{
				Environment: config.EnvironmentConfig{Name: config.ProductionEnv},
				HTTPServer:  config.HTTPServerConfig{Port: 3000},
				Google:      config.GoogleConfig{ClientID: "id", ClientSecret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "bad port",
			cfg: config.Config{
				HTTPServer: config.HTTPServerConfig{Port: 0},
				Google:     config.GoogleConfig{ClientID: "id", ClientSecret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "development without secret",
			cfg: config.Config{
				HTTPServer: config.HTTPServerConfig{Port: 3000},
				Google:     config.GoogleConfig{ClientID: "id", ClientSecret: "secret"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateServer()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", config.AppName) {
		t.Errorf("expected XDG dir, got %q", got)
	}
}

func TestCredentialFiles(t *testing.T) {
	cfg := &config.Config{Dir: filepath.Join(t.TempDir(), "nested")}

	if cfg.HasOAuthClient() || cfg.HasToken() {
		t.Fatal("expected no credential files yet")
	}
	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("expected mode 0700, got %o", info.Mode().Perm())
	}

	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.HasToken() {
		t.Error("expected token to exist")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if cfg.HasToken() {
		t.Error("expected token to be removed")
	}
}
