// Package config loads the tool configuration (server endpoint, default
// projects, bots, teams) from a YAML profile, by default ~/.gerrymander.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Server is the SSH endpoint of the Gerrit server.
type Server struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	User    string `mapstructure:"user"`
	KeyFile string `mapstructure:"keyfile"`
}

// Config is the full tool configuration.
type Config struct {
	Server   Server              `mapstructure:"server"`
	Projects []string            `mapstructure:"projects"`
	Bots     []string            `mapstructure:"bots"`
	Teams    map[string][]string `mapstructure:"teams"`
	Color    bool                `mapstructure:"color"`
}

// DefaultPath returns the per-user profile location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gerrymander.yaml"
	}
	return filepath.Join(home, ".gerrymander.yaml")
}

// Load reads the profile at path. A missing file yields the defaults; a
// malformed one is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.port", 29418)
	v.SetDefault("bots", []string{"jenkins", "smokestack"})

	if err := v.ReadInConfig(); err != nil {
		// A missing profile is fine; anything else is a real error.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return &cfg, nil
}
