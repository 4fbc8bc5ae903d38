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
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "24h" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the full YAML configuration for the superlinked binary.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
	Graph   GraphConfig   `yaml:"graph" validate:"required"`
	Sources []SourceEntry `yaml:"sources" validate:"dive"`

	// DataDir is the directory source paths must resolve under.
	// Relative source paths are joined to it; paths escaping it are
	// rejected at startup. Defaults to the working directory.
	DataDir string `yaml:"data_dir"`
}

type ServerConfig struct {
	// Port for the loader HTTP API. e.g. 8080
	Port int `yaml:"port" validate:"omitempty,min=1,max=65535"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

type StorageConfig struct {
	// Path of the badger directory. Ignored when InMemory is set.
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type IndexConfig struct {
	// Enabled turns on weaviate index population.
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`   // e.g. localhost:8081
	Scheme  string `yaml:"scheme"` // http or https
}

type GraphConfig struct {
	Origin  string       `yaml:"origin"`
	Version string       `yaml:"version"`
	Nodes   []NodeConfig `yaml:"nodes" validate:"min=1,dive"`
}

// NodeConfig describes one graph node. Which optional fields apply
// depends on the kind; the graph builder rejects bad combinations.
type NodeConfig struct {
	ID      string   `yaml:"id" validate:"required"`
	Kind    string   `yaml:"kind" validate:"required,oneof=schema_field categorical_similarity text_embedding number_embedding recency"`
	Length  int      `yaml:"length" validate:"omitempty,min=0"`
	Parents []string `yaml:"parents"`

	Field          string          `yaml:"field"`
	Categories     []string        `yaml:"categories"`
	NegativeFilter float64         `yaml:"negative_filter"`
	Min            float64         `yaml:"min"`
	Max            float64         `yaml:"max"`
	Periods        []Duration `yaml:"periods"`
	DefaultVector  []float64  `yaml:"default_vector"`
}

// SourceEntry binds one ingestion source to the node whose sink
// receives its records.
type SourceEntry struct {
	Name    string        `yaml:"name" validate:"required"`
	Path    string        `yaml:"path" validate:"required"`
	Format  string        `yaml:"format" validate:"required,oneof=csv fwf xml json jsonl parquet orc"`
	Node    string        `yaml:"node" validate:"required"`
	Field   string        `yaml:"field" validate:"required"`
	IDField string        `yaml:"id_field"`
	Schema  string        `yaml:"schema"`
	Options OptionsConfig `yaml:"options"`
}

type OptionsConfig struct {
	Delimiter  string   `yaml:"delimiter" validate:"omitempty,len=1"`
	NoHeader   bool     `yaml:"no_header"`
	FieldNames []string `yaml:"field_names"`
	Widths     []int    `yaml:"widths" validate:"dive,min=1"`
	RecordTag  string   `yaml:"record_tag"`
	ChunkSize  int      `yaml:"chunk_size" validate:"omitempty,min=1"`
}

// DefaultConfig returns the config written on first run.
func DefaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: "data/vectors"},
		Graph: GraphConfig{
			Origin:  "default",
			Version: "v1",
			Nodes: []NodeConfig{
				{ID: "category_field", Kind: "schema_field", Field: "category"},
				{
					ID:         "category_similarity",
					Kind:       "categorical_similarity",
					Length:     4,
					Parents:    []string{"category_field"},
					Categories: []string{"red", "green", "blue"},
				},
			},
		},
	}
}
