package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ClientConfig struct {
	ServerURL string `yaml:"serverUrl"`
	Token     string `yaml:"token"`
	QueuePath string `yaml:"queuePath"`
	// Desktop notifications in addition to terminal output.
	DesktopNotify bool `yaml:"desktopNotify"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "archtime.yaml"
	}
	return filepath.Join(home, ".archtime.yaml")
}

func loadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		ServerURL: "http://localhost:8090",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found; create it with serverUrl and token", path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if token := os.Getenv("ARCHTIME_TOKEN"); token != "" {
		cfg.Token = token
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required (config token or ARCHTIME_TOKEN)")
	}
	if cfg.QueuePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir for queue path: %w", err)
		}
		cfg.QueuePath = filepath.Join(home, ".archtime-queue.db")
	}

	return cfg, nil
}
