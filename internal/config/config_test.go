package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDevice(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/gymfit/gymfit.db
sync:
  server_url: https://sync.example.com
  api_key: secret
  user_id: user-1
  aggregate_timeout: 10s
`)
	cfg, err := LoadDevice(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/var/lib/gymfit/gymfit.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Sync.ServerURL != "https://sync.example.com" || cfg.Sync.APIKey != "secret" {
		t.Errorf("sync = %+v", cfg.Sync)
	}
	if cfg.Sync.AggregateTimeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Sync.AggregateTimeout)
	}
}

func TestLoadDeviceEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /original.db
sync:
  user_id: original-user
`)
	t.Setenv("GYMFIT_DB_PATH", "/override.db")
	t.Setenv("GYMFIT_SYNC_USER_ID", "override-user")

	cfg, err := LoadDevice(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/override.db" {
		t.Errorf("db path = %q, want /override.db", cfg.Database.Path)
	}
	if cfg.Sync.UserID != "override-user" {
		t.Errorf("user id = %q, want override-user", cfg.Sync.UserID)
	}
}

func TestLoadDeviceRequiresPath(t *testing.T) {
	path := writeConfig(t, `sync: {user_id: u}`)
	if _, err := LoadDevice(path); err == nil || !strings.Contains(err.Error(), "database.path") {
		t.Fatalf("got %v, want database.path error", err)
	}
}

func TestLoadDeviceMissingFile(t *testing.T) {
	if _, err := LoadDevice(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

const validServerYAML = `
listen:
  host: 0.0.0.0
  port: 8080
database:
  host: localhost
  port: 5432
  name: gymfit
  user: gymfit
  password: pw
auth:
  api_key: secret
`

func TestLoadServer(t *testing.T) {
	cfg, err := LoadServer(writeConfig(t, validServerYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen.Port != 8080 {
		t.Errorf("port = %d", cfg.Listen.Port)
	}
	want := "postgres://gymfit:pw@localhost:5432/gymfit?sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestLoadServerEnvOverrides(t *testing.T) {
	t.Setenv("GYMFIT_LISTEN_PORT", "9999")
	t.Setenv("GYMFIT_DB_PASSWORD", "env-pw")
	t.Setenv("GYMFIT_AUTH_API_KEY", "env-key")

	cfg, err := LoadServer(writeConfig(t, validServerYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Listen.Port)
	}
	if cfg.Database.Password != "env-pw" || cfg.Auth.APIKey != "env-key" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadServerValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing port without tailscale",
			yaml: `
database: {host: h, port: 5432, name: n, user: u}
auth: {api_key: k}
`,
			want: "listen.port",
		},
		{
			name: "missing database host",
			yaml: `
listen: {port: 8080}
database: {port: 5432, name: n, user: u}
auth: {api_key: k}
`,
			want: "database.host",
		},
		{
			name: "missing api key",
			yaml: `
listen: {port: 8080}
database: {host: h, port: 5432, name: n, user: u}
`,
			want: "auth.api_key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadServer(writeConfig(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want %s error", err, tt.want)
			}
		})
	}
}

func TestTailscaleReplacesListenPort(t *testing.T) {
	cfg, err := LoadServer(writeConfig(t, `
database: {host: h, port: 5432, name: n, user: u}
auth: {api_key: k}
tailscale: {enabled: true, hostname: gymfit, state_dir: /var/lib/ts}
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Tailscale.Enabled || cfg.Tailscale.Hostname != "gymfit" {
		t.Errorf("tailscale = %+v", cfg.Tailscale)
	}
}
