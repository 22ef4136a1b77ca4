package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultStackBase = 100
	DefaultIDPrefix  = "window"
)

// Geometry is a window rectangle in CSS pixels.
type Geometry struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoggingConfig configures the daemon's structured logger.
type LoggingConfig struct {
	// Level is one of: trace, debug, info, warn, error
	Level string `yaml:"level"`
	// Format is "console" (human readable) or "json"
	Format string `yaml:"format"`
}

// TUIConfig tunes the terminal window list.
type TUIConfig struct {
	RefreshIntervalMS int `yaml:"refresh_interval_ms"`
	MoveStep          int `yaml:"move_step"`
	ResizeStep        int `yaml:"resize_step"`
}

// PaletteConfig selects the launcher used by `webdesk switch`.
type PaletteConfig struct {
	// Backend is one of: auto, rofi, fuzzel, wofi, dmenu
	Backend string `yaml:"backend"`
	// Fuzzy enables fuzzy matching where the backend supports it (rofi).
	Fuzzy bool `yaml:"fuzzy"`
}

// Config is the effective webdesk configuration.
type Config struct {
	// SocketPath overrides the IPC socket location. Empty means
	// $XDG_RUNTIME_DIR/webdesk.sock.
	SocketPath string `yaml:"socket_path,omitempty"`
	// StackBase is the first z-index handed out in a session.
	StackBase int `yaml:"stack_base"`
	// IDPrefix is prepended to generated window IDs.
	IDPrefix      string        `yaml:"id_prefix"`
	DefaultWindow Geometry      `yaml:"default_window"`
	Logging       LoggingConfig `yaml:"logging"`
	TUI           TUIConfig     `yaml:"tui"`
	Palette       PaletteConfig `yaml:"palette"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		StackBase: DefaultStackBase,
		IDPrefix:  DefaultIDPrefix,
		DefaultWindow: Geometry{
			X:      80,
			Y:      60,
			Width:  640,
			Height: 480,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		TUI: TUIConfig{
			RefreshIntervalMS: 1000,
			MoveStep:          20,
			ResizeStep:        20,
		},
		Palette: PaletteConfig{
			Backend: "auto",
		},
	}
}

// Save writes the configuration to the standard location.
//
// Comments in the original file are not preserved.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.StackBase < 0 {
		return &ValidationError{Path: "stack_base", Err: fmt.Errorf("stack_base must be >= 0")}
	}
	if strings.TrimSpace(c.IDPrefix) == "" {
		return &ValidationError{Path: "id_prefix", Err: fmt.Errorf("id_prefix must not be empty")}
	}
	if strings.ContainsAny(c.IDPrefix, " \t\n") {
		return &ValidationError{Path: "id_prefix", Err: fmt.Errorf("id_prefix must not contain whitespace")}
	}
	if c.DefaultWindow.Width <= 0 {
		return &ValidationError{Path: "default_window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.DefaultWindow.Height <= 0 {
		return &ValidationError{Path: "default_window.height", Err: fmt.Errorf("height must be > 0")}
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: trace, debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: console, json")}
	}
	if c.TUI.RefreshIntervalMS <= 0 {
		return &ValidationError{Path: "tui.refresh_interval_ms", Err: fmt.Errorf("refresh_interval_ms must be > 0")}
	}
	if c.TUI.MoveStep <= 0 {
		return &ValidationError{Path: "tui.move_step", Err: fmt.Errorf("move_step must be > 0")}
	}
	if c.TUI.ResizeStep <= 0 {
		return &ValidationError{Path: "tui.resize_step", Err: fmt.Errorf("resize_step must be > 0")}
	}
	switch c.Palette.Backend {
	case "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "palette.backend", Err: fmt.Errorf("backend must be one of: auto, rofi, fuzzel, wofi, dmenu")}
	}
	return nil
}

// ValidationError reports an invalid value, with its file position when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
