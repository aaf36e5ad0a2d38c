// Package config holds all stormwatch configuration: upstream endpoints and
// credentials, the refresh schedule, the read API address, Discord
// delivery, and storage paths. Config is YAML on disk with environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full stormwatch configuration.
type Config struct {
	Name string `yaml:"name"`

	Upstream UpstreamConfig `yaml:"upstream"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	API      APIConfig      `yaml:"api"`
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// UpstreamConfig points at the game backend.
type UpstreamConfig struct {
	AuthURL      string `yaml:"auth_url"`
	WorldInfoURL string `yaml:"world_info_url"`
	CatalogURL   string `yaml:"catalog_url"`
	CosmeticsURL string `yaml:"cosmetics_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// RefreshConfig sets the daily refresh trigger, UTC wall clock.
type RefreshConfig struct {
	HourUTC   int `yaml:"hour_utc"`
	MinuteUTC int `yaml:"minute_utc"`
}

// APIConfig configures the internal read API.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// DiscordConfig configures digest delivery. An empty token disables
// notifications; refreshes still run.
type DiscordConfig struct {
	Token string `yaml:"token"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name: "stormwatch",
		Upstream: UpstreamConfig{
			AuthURL:      "https://account-public-service-prod.ol.epicgames.com/account/api/oauth/token",
			WorldInfoURL: "https://fortnite-public-service-prod11.ol.epicgames.com/fortnite/api/game/v2/world/info",
			CatalogURL:   "https://fortnite-public-service-prod11.ol.epicgames.com/fortnite/api/storefront/v2/catalog",
			CosmeticsURL: "https://fortnite-api.com/v2/cosmetics/br",
		},
		Refresh: RefreshConfig{
			HourUTC:   0,
			MinuteUTC: 5,
		},
		API: APIConfig{
			Addr: "127.0.0.1:8787",
		},
		Database: DatabaseConfig{
			Path: filepath.Join(".stormwatch", "stormwatch.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Secrets are
// expected to arrive this way rather than living in the YAML file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EPIC_CLIENT_ID"); v != "" {
		c.Upstream.ClientID = v
	}
	if v := os.Getenv("EPIC_CLIENT_SECRET"); v != "" {
		c.Upstream.ClientSecret = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("STORMWATCH_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("STORMWATCH_API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("STORMWATCH_REFRESH_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			c.Refresh.HourUTC = h
		}
	}
}

// Validate checks the parts the serve command cannot run without.
func (c *Config) Validate() error {
	if c.Upstream.ClientID == "" || c.Upstream.ClientSecret == "" {
		return fmt.Errorf("upstream client credentials are required (EPIC_CLIENT_ID / EPIC_CLIENT_SECRET)")
	}
	if c.Refresh.HourUTC < 0 || c.Refresh.HourUTC > 23 {
		return fmt.Errorf("refresh hour_utc must be 0-23, got %d", c.Refresh.HourUTC)
	}
	if c.Refresh.MinuteUTC < 0 || c.Refresh.MinuteUTC > 59 {
		return fmt.Errorf("refresh minute_utc must be 0-59, got %d", c.Refresh.MinuteUTC)
	}
	return nil
}
