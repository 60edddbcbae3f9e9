package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// RemoteURLEnv overrides [ShellConfig.RemoteURL] when set.
const RemoteURLEnv = "MUSIC_LIBRARY_URL"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Shell    ShellConfig    `toml:"shell"`
	Remote   RemoteConfig   `toml:"remote"`
	Limits   LimitsConfig   `toml:"limits"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SessionConfig controls mock token issuance and where the token is kept.
type SessionConfig struct {
	TTL        string `toml:"ttl"`
	StorageKey string `toml:"storage_key"`
	CookieName string `toml:"cookie_name"`
}

// Lifetime parses TTL, falling back to 24 hours when it is empty or invalid.
func (s SessionConfig) Lifetime() time.Duration {
	d, err := time.ParseDuration(s.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// ShellConfig contains settings for the shell HTTP server and where it finds the remote entry.
type ShellConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	RemoteURL    string `toml:"remote_url"`
	RemoteName   string `toml:"remote_name"`
	RemoteModule string `toml:"remote_module"`
}

// Addr returns host:port
func (s ShellConfig) Addr() string { return net.JoinHostPort(s.Host, strconv.Itoa(s.Port)) }

// URL returns the shell's base URL.
func (s ShellConfig) URL() string { return "http://" + s.Addr() }

// RemoteConfig contains settings for the music library remote HTTP server.
type RemoteConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port
func (r RemoteConfig) Addr() string { return net.JoinHostPort(r.Host, strconv.Itoa(r.Port)) }

// URL returns the remote's base URL.
func (r RemoteConfig) URL() string { return "http://" + r.Addr() }

// LimitsConfig contains the token bucket settings for login endpoints.
type LimitsConfig struct {
	LoginRate  float64 `toml:"login_rate"`
	LoginBurst int     `toml:"login_burst"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.ApplyEnv()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() {
	if url := os.Getenv(RemoteURLEnv); url != "" {
		c.Shell.RemoteURL = url
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
