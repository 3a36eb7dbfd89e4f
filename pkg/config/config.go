package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server/CLI configuration. Values come from
// ~/.reelvault/config.yaml when present, with REELVAULT_* environment
// variables taking precedence field by field.
type Config struct {
	DBPath       string `yaml:"db_path"`
	Addr         string `yaml:"addr"`
	TCPEventAddr string `yaml:"tcp_event_addr"`
	JWTSecret    string `yaml:"jwt_secret"`
	JWTIssuer    string `yaml:"jwt_issuer"`
	JWTTTLHours  int    `yaml:"jwt_ttl_hours"`
	PasswordHash string `yaml:"password_hash"` // bcrypt; empty disables auth
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		DBPath:       filepath.Join(home, ".reelvault", "catalog.db"),
		Addr:         ":8080",
		TCPEventAddr: ":7071",
		JWTSecret:    "dev-secret-change-me",
		JWTIssuer:    "reelvault",
		JWTTTLHours:  24,
	}
}

// DefaultPath is where Load looks and Save writes.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".reelvault", "config.yaml")
}

// Load reads the config file if it exists and applies env overrides. A
// missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := defaults()

	b, err := os.ReadFile(filepath.Clean(path))
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REELVAULT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("REELVAULT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("REELVAULT_TCP_EVENT_ADDR"); v != "" {
		cfg.TCPEventAddr = v
	}
	if v := os.Getenv("REELVAULT_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("REELVAULT_PASSWORD_HASH"); v != "" {
		cfg.PasswordHash = v
	}
}

// Save writes the config back out, creating the directory on first use.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// TokenTTL converts the configured hours, falling back to 24h.
func (c Config) TokenTTL() time.Duration {
	if c.JWTTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTTTLHours) * time.Hour
}
