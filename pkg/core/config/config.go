// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     config
// Description: TOML configuration for the robolang tools
// Author:      Mike Stoffels
// Created:     2025-02-11
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	coreerr "github.com/msto63/robolang/pkg/core/error"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "ROBOLANG_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	LSP     LSPConfig     `toml:"lsp"`
	GRPC    GRPCConfig    `toml:"grpc"`
	Parser  ParserConfig  `toml:"parser"`
	Catalog CatalogConfig `toml:"catalog"`
	History HistoryConfig `toml:"history"`
	Cache   CacheConfig   `toml:"cache"`
	Watch   WatchConfig   `toml:"watch"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// LSPConfig holds language server settings
type LSPConfig struct {
	// Transport is one of stdio, tcp or websocket
	Transport     string   `toml:"transport"`
	Address       string   `toml:"address"`
	WSPath        string   `toml:"ws_path"`
	Debounce      Duration `toml:"debounce"`
	TraceMessages bool     `toml:"trace_messages"`
}

// GRPCConfig holds the validation service settings
type GRPCConfig struct {
	Enabled          bool     `toml:"enabled"`
	Host             string   `toml:"host"`
	Port             int      `toml:"port"`
	EnableReflection bool     `toml:"enable_reflection"`
	ShutdownTimeout  Duration `toml:"shutdown_timeout"`
}

// ParserConfig holds parser options
type ParserConfig struct {
	StrictTopLevel bool `toml:"strict_top_level"`
}

// CatalogConfig points at a completion catalog; empty means the built-in one
type CatalogConfig struct {
	Path string `toml:"path"`
}

// HistoryConfig holds validation history settings
type HistoryConfig struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// CacheConfig holds validation result cache settings
type CacheConfig struct {
	Size int `toml:"size"`
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Debounce   Duration `toml:"debounce"`
	Extensions []string `toml:"extensions"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.History.Enabled = true
	cfg.GRPC.EnableReflection = true
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, coreerr.New("config file not found").
			WithCode(coreerr.CodeMissingConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	// Booleans that default to true are preset before decoding.
	cfg := Config{}
	cfg.History.Enabled = true
	cfg.GRPC.EnableReflection = true

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, coreerr.Wrap(err, "failed to parse config").
			WithCode(coreerr.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, coreerr.Newf("unknown config keys: %s", strings.Join(keys, ", ")).
			WithCode(coreerr.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from ROBOLANG_CONFIG or the first default
// location that exists. Without any file the defaults are returned.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// LoadOrDefault loads path when given, otherwise behaves like LoadFromEnv
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	return LoadFromEnv()
}

// DefaultPaths lists the locations searched for a config file
func DefaultPaths() []string {
	paths := []string{
		"./configs/robolang.toml",
		"./robolang.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "robolang", "robolang.toml"))
	}
	return paths
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// LSP
	if c.LSP.Transport == "" {
		c.LSP.Transport = "stdio"
	}
	if c.LSP.Address == "" {
		c.LSP.Address = "127.0.0.1:9741"
	}
	if c.LSP.WSPath == "" {
		c.LSP.WSPath = "/lsp"
	}
	if c.LSP.Debounce.Duration == 0 {
		c.LSP.Debounce.Duration = 200 * time.Millisecond
	}

	// gRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "127.0.0.1"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9740
	}
	if c.GRPC.ShutdownTimeout.Duration == 0 {
		c.GRPC.ShutdownTimeout.Duration = 5 * time.Second
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 30
	}

	// Cache
	if c.Cache.Size == 0 {
		c.Cache.Size = 256
	}

	// Watch
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 100 * time.Millisecond
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = []string{".robo"}
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Catalog.Path = os.ExpandEnv(c.Catalog.Path)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	invalid := func(key string, value interface{}, msg string) error {
		return coreerr.Newf("%s: %s", key, msg).
			WithCode(coreerr.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("key", key).
			WithDetail("value", value)
	}

	switch c.LSP.Transport {
	case "stdio", "tcp", "websocket":
	default:
		return invalid("lsp.transport", c.LSP.Transport, "must be stdio, tcp or websocket")
	}
	if !strings.HasPrefix(c.LSP.WSPath, "/") {
		return invalid("lsp.ws_path", c.LSP.WSPath, "must start with /")
	}
	if c.LSP.Debounce.Duration < 0 {
		return invalid("lsp.debounce", c.LSP.Debounce.String(), "must not be negative")
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return invalid("grpc.port", c.GRPC.Port, "must be between 1 and 65535")
	}
	if c.Cache.Size < 0 {
		return invalid("cache.size", c.Cache.Size, "must not be negative")
	}
	if c.History.RetentionDays < 0 {
		return invalid("history.retention_days", c.History.RetentionDays, "must not be negative")
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return invalid("watch.extensions", ext, "entries must start with a dot")
		}
	}
	return nil
}

// GRPCAddress returns the host:port of the validation service
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
