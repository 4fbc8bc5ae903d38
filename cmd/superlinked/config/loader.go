// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the config at path. When path is empty it
// falls back to ~/.superlinked/superlinked.yaml, creating a default
// config there on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not find the user's home directory: %w", err)
		}
		path = filepath.Join(home, ".superlinked", "superlinked.yaml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Printf("First run detected, creating the config at %s\n", path)
			if err := createDefault(path); err != nil {
				return nil, err
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file: %w", err)
	}
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Graph.Origin == "" {
		cfg.Graph.Origin = "default"
	}
	if cfg.Graph.Version == "" {
		cfg.Graph.Version = "v1"
	}
	if cfg.Index.Scheme == "" {
		cfg.Index.Scheme = "http"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Schema == "" {
			cfg.Sources[i].Schema = cfg.Sources[i].Name
		}
	}
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
