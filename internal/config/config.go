// Package config loads labelgen configuration from a YAML file,
// environment variables (LABELGEN_ prefix) and built-in defaults, with
// later sources overriding earlier ones.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	// Input contains CSV parsing limits and options.
	Input InputConfig `mapstructure:"input"`

	// Render contains raster export options.
	Render RenderConfig `mapstructure:"render"`

	// Barcode contains the external barcode service settings.
	Barcode BarcodeConfig `mapstructure:"barcode"`
}

// InputConfig controls the tabular input loader.
type InputConfig struct {
	// Delimiter is the CSV field separator.
	Delimiter string `mapstructure:"delimiter"`

	// Encoding is "utf-8" or "windows-1251".
	Encoding string `mapstructure:"encoding"`

	// MaxBytes is the input size ceiling.
	MaxBytes int64 `mapstructure:"max_bytes"`

	// MaxRows is the hard batch-size cap.
	MaxRows int `mapstructure:"max_rows"`
}

// RenderConfig controls rasterization.
type RenderConfig struct {
	// ExportScale is the raster export multiplier over logical canvas size.
	ExportScale float64 `mapstructure:"export_scale"`
}

// BarcodeConfig controls the barcode service client.
type BarcodeConfig struct {
	// Endpoint is the barcode generation URL.
	Endpoint string `mapstructure:"endpoint"`

	// Format is the default symbology.
	Format string `mapstructure:"format"`

	// Timeout bounds one render call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration. path may be empty, in which case only
// defaults, ./labelgen.yaml (if present) and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("input.delimiter", ",")
	v.SetDefault("input.encoding", "utf-8")
	v.SetDefault("input.max_bytes", 10<<20)
	v.SetDefault("input.max_rows", 500)
	v.SetDefault("render.export_scale", 2.0)
	v.SetDefault("barcode.endpoint", "http://localhost:3001/api/barcode/generate")
	v.SetDefault("barcode.format", "ean13")
	v.SetDefault("barcode.timeout", 15*time.Second)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("labelgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LABELGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Input.Delimiter) != 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if c.Input.MaxBytes <= 0 {
		return fmt.Errorf("input.max_bytes must be positive")
	}
	if c.Input.MaxRows <= 0 {
		return fmt.Errorf("input.max_rows must be positive")
	}
	if c.Render.ExportScale <= 0 {
		return fmt.Errorf("render.export_scale must be positive")
	}
	if c.Barcode.Endpoint == "" {
		return fmt.Errorf("barcode.endpoint is required")
	}
	return nil
}
