package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/parkctl/filter"
)

// EnvPrefix prefixes environment overrides, e.g. PARKCTL_PARKING_PASSWORD
const EnvPrefix = "PARKCTL"

// Load loads the configuration from file and environment. With no explicit
// path a missing config file is not an error, so credentials may come from
// the environment alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default exists for the optional type id, so bind it explicitly
	if err := v.BindEnv("parking.permit_media_type_id"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".parkctl"))
		}

		// Check /etc
		v.AddConfigPath("/etc/parkctl/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Parking defaults; empty values register the keys for env overrides
	v.SetDefault("parking.username", "")
	v.SetDefault("parking.password", "")
	v.SetDefault("parking.base_url", "")
	v.SetDefault("parking.timeout", "20s")

	v.SetDefault("filter.default", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Parking.Username) == "" {
		return fmt.Errorf("parking.username is required")
	}
	if strings.TrimSpace(cfg.Parking.Password) == "" {
		return fmt.Errorf("parking.password is required")
	}
	if strings.TrimSpace(cfg.Parking.BaseURL) == "" {
		return fmt.Errorf("parking.base_url is required")
	}
	if cfg.Parking.Timeout <= 0 {
		return fmt.Errorf("parking.timeout must be greater than zero")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	// Presets are compiled up front so a typo fails at startup
	compiler := filter.NewCompiler()
	if cfg.Filter.Default != "" {
		if _, err := compiler.Compile(cfg.Filter.Default); err != nil {
			return fmt.Errorf("filter.default: %w", err)
		}
	}
	for name, expr := range cfg.Filter.Presets {
		if _, err := compiler.Compile(expr); err != nil {
			return fmt.Errorf("filter.presets.%s: %w", name, err)
		}
	}

	return nil
}
