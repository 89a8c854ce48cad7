// Package config holds the settings of a compiler run and loads them from
// TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Color modes accepted by Output.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the complete configuration of one run. It is passed around by
// value.
type Config struct {
	Parse  ParseConfig  `toml:"parse" yaml:"parse"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

// ParseConfig controls the lexer and parser.
type ParseConfig struct {
	SuppressSemicolonWarnings bool `toml:"suppress_semicolon_warnings" yaml:"suppress_semicolon_warnings"`
}

// OutputConfig controls what is printed after a successful parse.
type OutputConfig struct {
	DumpAST     bool   `toml:"dump_ast" yaml:"dump_ast"`
	Verbose     bool   `toml:"verbose" yaml:"verbose"`
	PrintSource bool   `toml:"print_source" yaml:"print_source"`
	Analyze     bool   `toml:"analyze" yaml:"analyze"`
	Color       string `toml:"color" yaml:"color"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Analyze: true,
			Color:   ColorAuto,
		},
	}
}

// Load reads path on top of Default. The format is chosen by extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(content), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(strings.NewReader(string(content)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that the file formats cannot constrain.
func (c Config) Validate() error {
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never; got %q", c.Output.Color)
	}
	return nil
}
