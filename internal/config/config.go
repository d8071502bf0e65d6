// Package config handles campuslinkd configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSystem abstracts file operations for testability.
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
	Stat(path string) (os.FileInfo, error)
}

// osFileSystem implements FileSystem using the real OS.
type osFileSystem struct{}

func (osFileSystem) UserHomeDir() (string, error)       { return os.UserHomeDir() }
func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (osFileSystem) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

// Config holds all campuslinkd configuration. Values from the config
// file override defaults, including explicit zero values; missing keys
// keep their defaults.
type Config struct {
	Listen   ListenConfig      `yaml:"listen"`
	Gemini   GeminiConfig      `yaml:"gemini"`
	Chat     ChatConfig        `yaml:"chat"`
	Store    StoreConfig       `yaml:"store"`
	Auth     AuthConfig        `yaml:"auth"`
	LogLevel string            `yaml:"log_level"`
}

type ListenConfig struct {
	Addr string `yaml:"addr"`
}

// GeminiConfig defines model-service settings. The API key is taken
// from the GEMINI_API_KEY environment variable, never the file.
type GeminiConfig struct {
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	SystemPrompt   string `yaml:"system_prompt"`
}

type ChatConfig struct {
	MaxRounds          int `yaml:"max_rounds"`
	ToolTimeoutSeconds int `yaml:"tool_timeout_seconds"`
	HistoryLimit       int `yaml:"history_limit"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig maps bearer tokens to user ids. The real identity service
// lives elsewhere; this static map stands in for it.
type AuthConfig struct {
	Tokens map[string]string `yaml:"tokens"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen: ListenConfig{Addr: ":8434"},
		Gemini: GeminiConfig{
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 45,
			SystemPrompt: "You are the CampusLink assistant. You help students with their " +
				"profiles, posts, classrooms, placements, and study resources. Use the " +
				"available tools to look up real data before answering, and use the " +
				"start_* tools when the user wants to create or share something.",
		},
		Chat: ChatConfig{
			MaxRounds:          8,
			ToolTimeoutSeconds: 10,
			HistoryLimit:       40,
		},
		Store:    StoreConfig{Path: "campuslink.db"},
		LogLevel: "info",
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Listen.Addr == "" {
		return errors.New("listen.addr must not be empty")
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini.model must not be empty")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return errors.New("gemini.timeout_seconds must be positive")
	}
	if c.Chat.MaxRounds <= 0 {
		return errors.New("chat.max_rounds must be positive")
	}
	if c.Chat.ToolTimeoutSeconds <= 0 {
		return errors.New("chat.tool_timeout_seconds must be positive")
	}
	if c.Chat.HistoryLimit < 0 {
		return errors.New("chat.history_limit must not be negative")
	}
	if c.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Loader handles configuration loading with injected dependencies.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem.
func NewLoader() *Loader {
	return &Loader{fs: osFileSystem{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing).
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// searchPaths returns the config file search order.
func (l *Loader) searchPaths() []string {
	paths := []string{"campuslink.yaml"}
	if home, err := l.fs.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "campuslink", "config.yaml"))
	}
	paths = append(paths, "/etc/campuslink/config.yaml")
	return paths
}

// Load reads configuration from explicit (if non-empty) or the first
// existing file in the search order, merged over defaults. A missing
// file is not an error; defaults are returned. Parse and validation
// failures are.
func (l *Loader) Load(explicit string) (*Config, error) {
	cfg := DefaultConfig()

	path := explicit
	if path == "" {
		for _, p := range l.searchPaths() {
			if _, err := l.fs.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if explicit != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is a convenience function using the default loader.
func Load(explicit string) (*Config, error) {
	return NewLoader().Load(explicit)
}
