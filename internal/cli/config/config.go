package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/classmeta/pkg/meta"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

// EnvPrefix prefixes environment overrides, e.g. CLASSMETA_OUTPUT_FORMAT.
const EnvPrefix = "CLASSMETA"

// Config represents the classmeta CLI configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	Inspect InspectConfig `mapstructure:"inspect"`
	Types   TypesConfig   `mapstructure:"types"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"` // table, json or yaml
	Color  bool   `mapstructure:"color"`
}

// InspectConfig controls class inspection
type InspectConfig struct {
	Visibility string `mapstructure:"visibility"`
}

// TypesConfig controls the built-in type registry
type TypesConfig struct {
	Accessors string `mapstructure:"accessors"` // Accessor strategy for built-in types
}

// Load loads the configuration from classmeta.yaml in the current
// directory, if present.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads the configuration from path, or from classmeta.yaml in
// the current directory when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("output.format", "table")
	v.SetDefault("output.color", true)
	v.SetDefault("inspect.visibility", "public")
	v.SetDefault("types.accessors", "default")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("classmeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Visibility returns the configured inspection tier.
func (c *Config) Visibility() meta.Visibility {
	v, _ := meta.ParseVisibility(c.Inspect.Visibility)
	return v
}

// Strategy returns the configured accessor strategy for built-in types.
func (c *Config) Strategy() types.Strategy {
	s, _ := types.ParseStrategy(c.Types.Accessors)
	return s
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Output.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be table, json or yaml, got: %s", cfg.Output.Format)
	}

	if _, err := meta.ParseVisibility(cfg.Inspect.Visibility); err != nil {
		return fmt.Errorf("inspect.visibility: %w", err)
	}

	s, err := types.ParseStrategy(cfg.Types.Accessors)
	if err != nil {
		return fmt.Errorf("types.accessors: %w", err)
	}
	if s == types.Custom {
		return fmt.Errorf("types.accessors cannot be custom: built-in types have no naming function")
	}
	return nil
}
