package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" (default) or "mysql"
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"logLevel"`
}

type AuthConfig struct {
	// Base64-encoded HS256 signing secret.
	Secret        string   `yaml:"secret"`
	AllowedEmails []string `yaml:"allowedEmails"`
	AdminEmail    string   `yaml:"adminEmail"`
}

type Config struct {
	Listen   string         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// LoadConfig reads the yaml config file. ARCHTIME_DSN and ARCHTIME_SECRET
// override the file so secrets can stay out of it.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Listen: ":8090",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "archtime.db",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}

	if dsn := os.Getenv("ARCHTIME_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := os.Getenv("ARCHTIME_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("auth secret is required (config auth.secret or ARCHTIME_SECRET)")
	}
	if len(cfg.Auth.AllowedEmails) == 0 {
		return nil, fmt.Errorf("at least one allowed email is required")
	}

	return cfg, nil
}
