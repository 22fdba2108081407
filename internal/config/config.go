// Package config resolves crush's startup configuration: a config
// directory found via an environment-variable/XDG/home-dir fallback
// chain, holding a single YAML file parsed with yaml.Node for the one
// polymorphic field (namespace list as a bare string or a sequence).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"crush/internal/crusherr"
)

// appName is the single source of truth for the application name. All
// derived identifiers (env vars, config paths) are computed from it.
const appName = "crush"

// envConfigDir is checked first when resolving the config directory.
var envConfigDir = strings.ToUpper(appName) + "_CONFIG_DIR"

// defaultChannelCapacity matches internal/streamio.Output's own buffered
// RowChannel default, so a config file that omits channel-capacity
// reproduces today's unconfigured behavior exactly.
const defaultChannelCapacity = 64

// Config holds crush's startup configuration: which namespaces are
// `use`d into the root scope before a script runs, where the REPL's
// history file lives, a row channel buffer size, and the logging
// verbosity.
type Config struct {
	// UseNamespaces lists namespace names the root scope should `use`
	// before executing anything, e.g. "io", "var".
	UseNamespaces []string
	// HistoryFile is the path the REPL's readline.Instance persists
	// command history to.
	HistoryFile string
	// ChannelCapacity is read from channel_capacity and defaulted here;
	// internal/streamio does not consume it and always gives a stage's
	// RowChannel a 64-row buffer.
	ChannelCapacity int
	// LogLevel is parsed with charmbracelet/log's level parser; an
	// empty or invalid value falls back to log.InfoLevel.
	LogLevel string
}

// yamlConfig is the on-disk shape. Uses is a yaml.Node because it
// accepts either a bare string ("io") or a sequence (["io", "var"]),
// the same polymorphic-field technique dslyaml.yamlRawNode.Uses uses.
type yamlConfig struct {
	Uses            yaml.Node `yaml:"use,omitempty"`
	HistoryFile     string    `yaml:"history_file,omitempty"`
	ChannelCapacity int       `yaml:"channel_capacity,omitempty"`
	LogLevel        string    `yaml:"log_level,omitempty"`
}

// Default returns the configuration crush runs with when no config file
// is present.
func Default() Config {
	dir, err := resolveConfigDir()
	if err != nil {
		dir = ""
	}
	return Config{
		UseNamespaces:   []string{"io", "var"},
		HistoryFile:     filepath.Join(dir, "history"),
		ChannelCapacity: defaultChannelCapacity,
		LogLevel:        "info",
	}
}

// resolveConfigDir returns the base config directory for crush.
// Priority: $CRUSH_CONFIG_DIR > $XDG_CONFIG_HOME/crush > ~/.config/crush.
func resolveConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// Load resolves the config directory, reads config.yaml from it if
// present, and returns the merged configuration. A missing config file
// is not an error: Default() is returned unchanged.
func Load() (Config, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return Config{}, crusherr.IOf("resolving config directory: %v", err)
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile reads and parses a single config file at path. A missing file
// returns Default() with no error; any other read or parse failure is
// reported via crusherr.ErrIO/ErrParse.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, crusherr.IOf("reading config file %s: %v", path, err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, crusherr.Parsef("config file %s: %v", path, err)
	}

	if yc.Uses.Kind != 0 {
		uses, err := convertUses(&yc.Uses)
		if err != nil {
			return Config{}, crusherr.Parsef("config file %s: use: %v", path, err)
		}
		cfg.UseNamespaces = uses
	}
	if yc.HistoryFile != "" {
		cfg.HistoryFile = yc.HistoryFile
	}
	if yc.ChannelCapacity > 0 {
		cfg.ChannelCapacity = yc.ChannelCapacity
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	return cfg, nil
}

// convertUses normalizes the polymorphic `use` field into a string
// slice, mirroring dslyaml.convertUsesNode's string-or-sequence handling.
func convertUses(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, fmt.Errorf("use must not be empty")
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var uses []string
		if err := node.Decode(&uses); err != nil {
			return nil, fmt.Errorf("use sequence: %w", err)
		}
		return uses, nil
	default:
		return nil, fmt.Errorf("use must be a string or sequence, got YAML kind %d", node.Kind)
	}
}

// NewLogger builds a charmbracelet/log Logger at cfg's configured level,
// writing to out. An unparsable LogLevel falls back to log.InfoLevel
// rather than failing startup over a typo in a config file.
func NewLogger(cfg Config, out *os.File) *log.Logger {
	logger := log.NewWithOptions(out, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
