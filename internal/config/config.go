package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Device is the on-device configuration for the gymfit CLI.
type Device struct {
	Database DeviceDatabase `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
}

// DeviceDatabase locates the embedded SQLite store.
type DeviceDatabase struct {
	Path string `yaml:"path"`
}

// SyncConfig points the device at its sync server.
type SyncConfig struct {
	ServerURL        string        `yaml:"server_url"`
	APIKey           string        `yaml:"api_key"`
	UserID           string        `yaml:"user_id"`
	AggregateTimeout time.Duration `yaml:"aggregate_timeout"`
}

// Server is the configuration for gymfit-server.
type Server struct {
	Listen    ListenConfig    `yaml:"listen"`
	Database  ServerDatabase  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

// ListenConfig is the plain-HTTP listener address.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ServerDatabase is the server's Postgres connection.
type ServerDatabase struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig carries the shared API key devices must present.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig optionally serves over a tailnet instead of plain HTTP.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d ServerDatabase) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// LoadDevice reads the device config from a YAML file, then applies
// environment variable overrides:
//
//	GYMFIT_DB_PATH, GYMFIT_SYNC_SERVER_URL, GYMFIT_SYNC_API_KEY,
//	GYMFIT_SYNC_USER_ID
func LoadDevice(path string) (*Device, error) {
	cfg := &Device{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if v := os.Getenv("GYMFIT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GYMFIT_SYNC_SERVER_URL"); v != "" {
		cfg.Sync.ServerURL = v
	}
	if v := os.Getenv("GYMFIT_SYNC_API_KEY"); v != "" {
		cfg.Sync.APIKey = v
	}
	if v := os.Getenv("GYMFIT_SYNC_USER_ID"); v != "" {
		cfg.Sync.UserID = v
	}

	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("config validation: database.path is required")
	}
	return cfg, nil
}

// LoadServer reads the server config from a YAML file, then applies
// environment variable overrides:
//
//	GYMFIT_LISTEN_HOST, GYMFIT_LISTEN_PORT,
//	GYMFIT_DB_HOST, GYMFIT_DB_PORT, GYMFIT_DB_NAME,
//	GYMFIT_DB_USER, GYMFIT_DB_PASSWORD, GYMFIT_DB_SSLMODE,
//	GYMFIT_AUTH_API_KEY
func LoadServer(path string) (*Server, error) {
	cfg := &Server{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyServerEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyServerEnvOverrides(cfg *Server) {
	if v := os.Getenv("GYMFIT_LISTEN_HOST"); v != "" {
		cfg.Listen.Host = v
	}
	if v := os.Getenv("GYMFIT_LISTEN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Listen.Port = port
		}
	}
	if v := os.Getenv("GYMFIT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("GYMFIT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("GYMFIT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("GYMFIT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("GYMFIT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("GYMFIT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("GYMFIT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Server) validate() error {
	if c.Listen.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("listen.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
