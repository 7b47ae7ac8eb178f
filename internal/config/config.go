package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/philipparndt/goratio/internal/measurement"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Editing  EditingConfig  `yaml:"editing" toml:"editing"`
	Viewport ViewportConfig `yaml:"viewport" toml:"viewport"`
	Display  DisplayConfig  `yaml:"display" toml:"display"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Labels   []string       `yaml:"labels" toml:"labels"`
}

// EditingConfig holds pointer tolerances for picking and dragging segments
type EditingConfig struct {
	Hit measurement.HitConfig `yaml:"hit" toml:"hit"`
	// DrawOffset is how far h and H are drawn from their true position
	DrawOffset float64 `yaml:"draw_offset" toml:"draw_offset"`
}

// ViewportConfig holds zoom behaviour
type ViewportConfig struct {
	ZoomStep int `yaml:"zoom_step" toml:"zoom_step"`
}

// DisplayConfig holds window and redraw settings
type DisplayConfig struct {
	Width      float32 `yaml:"width" toml:"width"`
	Height     float32 `yaml:"height" toml:"height"`
	DebounceMS int     `yaml:"debounce_ms" toml:"debounce_ms"`
	LineWidth  float32 `yaml:"line_width" toml:"line_width"`
}

// Debounce returns the relayout delay
func (d DisplayConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMS) * time.Millisecond
}

// ExportConfig holds settings for CSV and image export
type ExportConfig struct {
	Delimiter    string `yaml:"delimiter" toml:"delimiter"`
	ImagesSuffix string `yaml:"images_suffix" toml:"images_suffix"`
}

// DatabaseConfig holds the session database connection
type DatabaseConfig struct {
	DSN string `yaml:"dsn" toml:"dsn"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Editing: EditingConfig{
			Hit:        measurement.DefaultHitConfig(),
			DrawOffset: 8,
		},
		Viewport: ViewportConfig{
			ZoomStep: 10,
		},
		Display: DisplayConfig{
			Width:      1200,
			Height:     800,
			DebounceMS: 200,
			LineWidth:  2,
		},
		Export: ExportConfig{
			Delimiter:    ",",
			ImagesSuffix: "_images",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Labels: append([]string(nil), measurement.JointLabels...),
	}
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}

// LoadFromFile loads configuration from a YAML or TOML file, chosen by
// extension. Keys missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isTOML(filename) {
		err = toml.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return config, nil
}

// Load reads the config at filename, or at GetConfigPath when filename is
// empty. A missing default file yields Default().
func Load(filename string) (*Config, error) {
	if filename != "" {
		return LoadFromFile(filename)
	}
	config, err := LoadFromFile(GetConfigPath())
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// SaveToFile saves configuration as YAML or TOML, chosen by extension
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if isTOML(filename) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	hit := c.Editing.Hit
	if hit.EndpointThreshold <= 0 {
		return fmt.Errorf("editing.hit.endpoint_threshold must be positive")
	}
	if hit.LineThreshold <= 0 {
		return fmt.Errorf("editing.hit.line_threshold must be positive")
	}
	if hit.VisualOffset < 0 || c.Editing.DrawOffset < 0 {
		return fmt.Errorf("editing offsets cannot be negative")
	}

	if c.Viewport.ZoomStep < 1 || c.Viewport.ZoomStep > 100 {
		return fmt.Errorf("viewport.zoom_step must be between 1 and 100")
	}

	if c.Display.DebounceMS < 0 {
		return fmt.Errorf("display.debounce_ms cannot be negative")
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display.width and display.height must be positive")
	}

	if len([]rune(c.Export.Delimiter)) != 1 {
		return fmt.Errorf("export.delimiter must be a single character")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	if len(c.Labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}
	seen := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		if l == "" {
			return fmt.Errorf("labels cannot contain an empty label")
		}
		if seen[l] {
			return fmt.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "goratio", "config.yaml")
}
