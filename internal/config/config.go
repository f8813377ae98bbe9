package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Decoder DecoderConfig `json:"decoder"`
	Stats   StatsConfig   `json:"stats"`
	Zones   ZonesConfig   `json:"zones"`
	Render  RenderConfig  `json:"render"`
	Output  OutputConfig  `json:"output"`
}

// DecoderConfig holds configuration for the radiometric decode
type DecoderConfig struct {
	// LibraryPath points to the directory holding the vendor decode
	// libraries and measurement tool. Replaceable so newer calibration
	// lineups can be used with older captures.
	LibraryPath string `json:"library_path"`
	InputDir    string `json:"input_dir"`
}

// StatsConfig holds configuration for per-frame statistics
type StatsConfig struct {
	// PercentileBands lists extra percentiles (0-100) reported per frame.
	PercentileBands []float64 `json:"percentile_bands"`
}

// ZonesConfig holds the median-relative zone thresholds in degrees Celsius
type ZonesConfig struct {
	LowOffset  float64 `json:"low_offset"`
	HighOffset float64 `json:"high_offset"`
}

// RenderConfig holds configuration for the annotated visualization
type RenderConfig struct {
	Palette  string  `json:"palette"`
	FixedMin float64 `json:"fixed_min"`
	FixedMax float64 `json:"fixed_max"`
	// UseFixedBounds maps temperatures against [FixedMin, FixedMax]
	// instead of the per-frame [min, max].
	UseFixedBounds bool   `json:"use_fixed_bounds"`
	LogoPath       string `json:"logo_path"`
	LogoSize       int    `json:"logo_size"`
	OrgName        string `json:"org_name"`
	ShowLegend     bool   `json:"show_legend"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	OutputDir string `json:"output_dir"`
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{
			LibraryPath: "./dji_libs",
			InputDir:    "./input",
		},
		Stats: StatsConfig{
			PercentileBands: []float64{5, 95},
		},
		Zones: ZonesConfig{
			LowOffset:  5.0,
			HighOffset: 5.0,
		},
		Render: RenderConfig{
			Palette:    "inferno",
			LogoSize:   96,
			OrgName:    "",
			ShowLegend: true,
		},
		Output: OutputConfig{
			OutputDir: "./output",
			Format:    "jpg",
			Quality:   90,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Decoder.LibraryPath == "" {
		return fmt.Errorf("decoder.library_path cannot be empty")
	}

	for _, p := range c.Stats.PercentileBands {
		if p < 0 || p > 100 {
			return fmt.Errorf("stats.percentile_bands entries must be between 0 and 100")
		}
	}

	if c.Zones.LowOffset < 0 || c.Zones.HighOffset < 0 {
		return fmt.Errorf("zones offsets must be non-negative")
	}

	if c.Render.Palette != "inferno" && c.Render.Palette != "grayscale" {
		return fmt.Errorf("render.palette must be inferno or grayscale")
	}

	if c.Render.UseFixedBounds && c.Render.FixedMin >= c.Render.FixedMax {
		return fmt.Errorf("render.fixed_min must be below render.fixed_max")
	}

	if c.Render.LogoSize < 1 {
		return fmt.Errorf("render.logo_size must be positive")
	}

	if c.Output.Format != "jpg" && c.Output.Format != "jpeg" && c.Output.Format != "png" {
		return fmt.Errorf("output.format must be jpg or png")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "thermal-analyzer", "config.json")
}
