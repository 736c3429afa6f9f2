package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Agent     AgentConfig     `yaml:"agent"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AgentConfig configures the on-device sync agent: where its readings come
// from, where results are cached, and which server receives them.
type AgentConfig struct {
	ServerURL string `yaml:"server_url"`
	DeviceID  string `yaml:"device_id"`
	Platform  string `yaml:"platform"`
	Range     string `yaml:"range"`     // today, 7d, 30d
	DataFile  string `yaml:"data_file"` // JSON export of device readings
	CachePath string `yaml:"cache_path"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix HEALTHSYNC_ and underscore-separated paths:
//
//	HEALTHSYNC_SERVER_HOST, HEALTHSYNC_SERVER_PORT,
//	HEALTHSYNC_DB_HOST, HEALTHSYNC_DB_PORT, HEALTHSYNC_DB_NAME,
//	HEALTHSYNC_DB_USER, HEALTHSYNC_DB_PASSWORD, HEALTHSYNC_DB_SSLMODE,
//	HEALTHSYNC_AUTH_API_KEY, HEALTHSYNC_AGENT_SERVER_URL,
//	HEALTHSYNC_AGENT_DEVICE_ID
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadAgent reads config for the agent binary. Only the agent and auth
// sections are validated; the agent never touches the database directly.
func LoadAgent(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Agent.ServerURL == "" {
		return nil, fmt.Errorf("config validation: agent.server_url is required")
	}
	if cfg.Auth.APIKey == "" {
		return nil, fmt.Errorf("config validation: auth.api_key is required")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEALTHSYNC_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HEALTHSYNC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HEALTHSYNC_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("HEALTHSYNC_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("HEALTHSYNC_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("HEALTHSYNC_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("HEALTHSYNC_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("HEALTHSYNC_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("HEALTHSYNC_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("HEALTHSYNC_AGENT_SERVER_URL"); v != "" {
		cfg.Agent.ServerURL = v
	}
	if v := os.Getenv("HEALTHSYNC_AGENT_DEVICE_ID"); v != "" {
		cfg.Agent.DeviceID = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
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
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
