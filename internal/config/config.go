package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the client and the mock server.
type Config struct {
	Env    string       `yaml:"env"`
	API    APIConfig    `yaml:"api"`
	WS     WSConfig     `yaml:"ws"`
	Server ServerConfig `yaml:"server"`
}

// APIConfig configures the REST client.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	PageLimit int           `yaml:"page_limit"`
}

// WSConfig configures the WebSocket transport.
type WSConfig struct {
	URL           string        `yaml:"url"`
	ReconnectBase time.Duration `yaml:"reconnect_base"`
	ReconnectCap  time.Duration `yaml:"reconnect_cap"`
	MaxReconnects int           `yaml:"max_reconnects"`
	WriteWait     time.Duration `yaml:"write_wait"`
}

// ServerConfig configures cmd/mockserver only.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	RedisAddr      string        `yaml:"redis_addr"`
	AllowedOrigins string        `yaml:"allowed_origins"`
	PongWait       time.Duration `yaml:"pong_wait"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env: "local",
		API: APIConfig{
			BaseURL:   "http://localhost:8090",
			Timeout:   10 * time.Second,
			PageLimit: 10,
		},
		WS: WSConfig{
			URL:           "ws://localhost:8090/ws",
			ReconnectBase: time.Second,
			ReconnectCap:  30 * time.Second,
			MaxReconnects: 5,
			WriteWait:     10 * time.Second,
		},
		Server: ServerConfig{
			Addr:      ":8090",
			JWTSecret: "dev-secret-do-not-use",
			PongWait:  60 * time.Second,
		},
	}
}

// Path returns the config file path based on APP_ENV.
func Path() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

// Load builds the configuration: defaults, then the YAML file at path
// (missing file is not an error), then OS environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	return cfg, nil
}

// applyEnv overrides config fields from environment variables.
// Env vars always win over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("ADWATCH_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ADWATCH_WS_URL"); v != "" {
		c.WS.URL = v
	}
	if v := os.Getenv("ADWATCH_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ADWATCH_JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("ADWATCH_REDIS_ADDR"); v != "" {
		c.Server.RedisAddr = v
	}
	if v := os.Getenv("ADWATCH_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = v
	}
	if v := os.Getenv("ADWATCH_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.PageLimit = n
		}
	}
	if v := os.Getenv("ADWATCH_MAX_RECONNECTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.WS.MaxReconnects = n
		}
	}
}
