package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Defaults for the Dados Abertos API and the aggregation pipeline
const (
	DefaultAPIBaseURL = "https://dadosabertos.camara.leg.br/api/v2"
	// PlenarioID is the organ id of the Chamber's plenary
	DefaultPlenarioID = 180
	DefaultCacheTTL   = 300 * time.Second
	DefaultWorkers    = 6
	DefaultPort       = 5000
)

// Config holds the runtime configuration for the service
type Config struct {
	Port       int           `yaml:"port"`
	APIBaseURL string        `yaml:"api_base_url"`
	PlenarioID int           `yaml:"plenario_id"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	Workers    int           `yaml:"workers"`
	// UpstreamRPS caps the request rate against the public API; zero disables pacing
	UpstreamRPS float64 `yaml:"upstream_rps"`
	Dev         bool    `yaml:"dev"`
}

// Load builds configuration from environment variables over defaults
func Load() *Config {
	cfg := &Config{
		Port:        DefaultPort,
		APIBaseURL:  DefaultAPIBaseURL,
		PlenarioID:  DefaultPlenarioID,
		CacheTTL:    DefaultCacheTTL,
		Workers:     DefaultWorkers,
		UpstreamRPS: 0,
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("PAUTA_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("PAUTA_PLENARIO_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			cfg.PlenarioID = id
		}
	}
	if v := os.Getenv("PAUTA_CACHE_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			cfg.CacheTTL = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("PAUTA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("PAUTA_UPSTREAM_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			cfg.UpstreamRPS = rps
		}
	}

	return cfg
}

// fileConfig mirrors Config with YAML-friendly scalar types
type fileConfig struct {
	Port            *int     `yaml:"port"`
	APIBaseURL      *string  `yaml:"api_base_url"`
	PlenarioID      *int     `yaml:"plenario_id"`
	CacheTTLSeconds *int     `yaml:"cache_ttl_seconds"`
	Workers         *int     `yaml:"workers"`
	UpstreamRPS     *float64 `yaml:"upstream_rps"`
}

// LoadFile overlays values from a YAML config file onto cfg. Fields absent
// from the file keep their current values
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Port != nil && *fc.Port > 0 {
		c.Port = *fc.Port
	}
	if fc.APIBaseURL != nil && *fc.APIBaseURL != "" {
		c.APIBaseURL = *fc.APIBaseURL
	}
	if fc.PlenarioID != nil && *fc.PlenarioID > 0 {
		c.PlenarioID = *fc.PlenarioID
	}
	if fc.CacheTTLSeconds != nil && *fc.CacheTTLSeconds >= 0 {
		c.CacheTTL = time.Duration(*fc.CacheTTLSeconds) * time.Second
	}
	if fc.Workers != nil && *fc.Workers > 0 {
		c.Workers = *fc.Workers
	}
	if fc.UpstreamRPS != nil && *fc.UpstreamRPS > 0 {
		c.UpstreamRPS = *fc.UpstreamRPS
	}

	return nil
}
