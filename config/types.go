package config

import (
	"time"

	"github.com/s0up4200/parkctl/parking"
)

// Config represents the complete configuration structure
type Config struct {
	Parking ParkingConfig `mapstructure:"parking"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ParkingConfig holds the account and API connection details
type ParkingConfig struct {
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PermitMediaTypeID *int64        `mapstructure:"permit_media_type_id"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	// Default applies to list commands run without --filter or --preset
	Default string            `mapstructure:"default"`
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// ClientConfig converts the parking section into a library configuration.
func (c ParkingConfig) ClientConfig() parking.Config {
	return parking.Config{
		Username:          c.Username,
		Password:          c.Password,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		PermitMediaTypeID: c.PermitMediaTypeID,
	}
}

// Preset returns the named filter expression.
func (c FilterConfig) Preset(name string) (string, bool) {
	expr, ok := c.Presets[name]
	return expr, ok
}
