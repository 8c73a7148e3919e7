// Package config loads thematic configuration from defaults, an optional
// YAML file and THEMATIC_* environment variables, in that order of priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/kittclouds/thematic/internal/logging"
	"github.com/kittclouds/thematic/pkg/recommend"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "THEMATIC_"

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"thematic.yaml",
	"thematic.yml",
}

// Config is the full application configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig locates the story database.
type StoreConfig struct {
	// DSN is a SQLite file path, or ":memory:".
	DSN string `koanf:"dsn" validate:"required"`
}

// RecommendConfig holds engine defaults.
type RecommendConfig struct {
	// Threshold applies when a story does not set its own.
	Threshold float64 `koanf:"threshold" validate:"gte=0,lte=1"`
	TopN      int     `koanf:"top_n" validate:"gte=0"`
}

func defaultConfig() *Config {
	rc := recommend.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			DSN: "thematic.db",
		},
		Recommend: RecommendConfig{
			Threshold: rc.Threshold,
			TopN:      rc.TopN,
		},
	}
}

var validate = validator.New()

// Load reads configuration. An empty path falls back to THEMATIC_CONFIG and
// then DefaultConfigPaths; a missing file is not an error unless path was
// given explicitly.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps THEMATIC_RECOMMEND_TOP_N to recommend.top_n: the
// first underscore separates the section from the key.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// LoggingConfig converts the logging section for logging.Init.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// RecommendConfig converts the recommend section for recommend.NewEngine.
func (c *Config) RecommendConfig() *recommend.Config {
	return &recommend.Config{
		Threshold: c.Recommend.Threshold,
		TopN:      c.Recommend.TopN,
	}
}
