// Package config loads gonsd's configuration with Viper.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (GONSD_* prefix)
//  2. YAML config file (if specified)
//  3. Hardcoded defaults
//
// Environment variables are mapped from GONSD_CATEGORY_SETTING format,
// e.g., GONSD_SERVER_LISTEN_ADDR maps to server.listen_addr in YAML.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CacheConfig sizes and tunes the RR cache (spec: rrcache.Cache).
type CacheConfig struct {
	MaxBytes   int64 `yaml:"max_bytes"   mapstructure:"max_bytes"`
	MaxRecords int   `yaml:"max_records" mapstructure:"max_records"`
	RoundRobin bool  `yaml:"round_robin" mapstructure:"round_robin"`
}

// ServerConfig controls the listening transport.
type ServerConfig struct {
	ListenAddr         string `yaml:"listen_addr"         mapstructure:"listen_addr"`
	RecursionAvailable bool   `yaml:"recursion_available" mapstructure:"recursion_available"`
}

// ZonesConfig names the master files to load at startup.
type ZonesConfig struct {
	Directory string   `yaml:"directory" mapstructure:"directory"`
	Files     []string `yaml:"files"     mapstructure:"files"`
}

// HostsConfig names an optional /etc/hosts-style file to ingest.
type HostsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level"             mapstructure:"level"`
	Structured       bool              `yaml:"structured"        mapstructure:"structured"`
	StructuredFormat string            `yaml:"structured_format" mapstructure:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       mapstructure:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      mapstructure:"extra_fields"`
}

// HealthConfig controls the periodic diagnostics reporter.
type HealthConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Config is the root configuration structure.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"   mapstructure:"cache"`
	Server  ServerConfig  `yaml:"server"  mapstructure:"server"`
	Zones   ZonesConfig   `yaml:"zones"   mapstructure:"zones"`
	Hosts   HostsConfig   `yaml:"hosts"   mapstructure:"hosts"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Health  HealthConfig  `yaml:"health"  mapstructure:"health"`
}

// Load loads configuration from an optional YAML file with environment
// variable overrides. path may be empty, in which case only defaults and
// environment variables apply.
func Load(path string) (*Config, error) {
	v, err := initConfig(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	loadCacheConfig(v, cfg)
	loadServerConfig(v, cfg)
	loadZonesConfig(v, cfg)
	loadHostsConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadHealthConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GONSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// An env var set to "" still overrides, so it reaches validation.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.max_bytes", int64(64*1024*1024))
	v.SetDefault("cache.max_records", 100000)
	v.SetDefault("cache.round_robin", true)

	v.SetDefault("server.listen_addr", "0.0.0.0:53")
	v.SetDefault("server.recursion_available", false)

	v.SetDefault("zones.directory", "zones")
	v.SetDefault("zones.files", []string{})

	v.SetDefault("hosts.path", "/etc/hosts")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	v.SetDefault("health.interval", "30s")
}

func loadCacheConfig(v *viper.Viper, cfg *Config) {
	cfg.Cache.MaxBytes = v.GetInt64("cache.max_bytes")
	cfg.Cache.MaxRecords = v.GetInt("cache.max_records")
	cfg.Cache.RoundRobin = v.GetBool("cache.round_robin")
}

func loadServerConfig(v *viper.Viper, cfg *Config) {
	cfg.Server.ListenAddr = v.GetString("server.listen_addr")
	cfg.Server.RecursionAvailable = v.GetBool("server.recursion_available")
}

func loadZonesConfig(v *viper.Viper, cfg *Config) {
	cfg.Zones.Directory = v.GetString("zones.directory")
	cfg.Zones.Files = getStringSliceOrSplit(v, "zones.files")
}

func loadHostsConfig(v *viper.Viper, cfg *Config) {
	cfg.Hosts.Path = v.GetString("hosts.path")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
	cfg.Logging.ExtraFields = v.GetStringMapString("logging.extra_fields")
}

func loadHealthConfig(v *viper.Viper, cfg *Config) {
	cfg.Health.Interval = v.GetDuration("health.interval")
}

// getStringSliceOrSplit handles both slice and comma-separated string values,
// since environment variables can only carry the latter.
func getStringSliceOrSplit(v *viper.Viper, key string) []string {
	if slice := v.GetStringSlice(key); len(slice) > 0 {
		result := make([]string, 0, len(slice))
		for _, s := range slice {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
		return result
	}
	if s := v.GetString(key); s != "" {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return nil
}

func normalizeConfig(cfg *Config) error {
	if cfg.Cache.MaxBytes <= 0 {
		return errors.New("cache.max_bytes must be positive")
	}
	if cfg.Cache.MaxRecords <= 0 {
		return errors.New("cache.max_records must be positive")
	}
	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		return errors.New("server.listen_addr must not be empty")
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}
	if cfg.Health.Interval <= 0 {
		cfg.Health.Interval = 30 * time.Second
	}
	return nil
}
