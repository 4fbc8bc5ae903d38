// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader is the ingestion collaborator: it streams registered
// file-backed sources in bounded chunks into their sinks, one background
// task per source, and retains each task's terminal state for polling.
//
// The loader never raises a source's failure into the caller of Load;
// failures are captured on the task and only visible through GetStatus.
package loader

import (
	"context"
	"reflect"
)

// Record is one ingested row, keyed by field name. It is an alias so any
// implementation accepting []map[string]any satisfies Sink.
type Record = map[string]any

// Sink receives ingested record batches for one source. The loader
// depends only on this behavioral surface, never on a sink's internals.
type Sink interface {
	Put(ctx context.Context, records []Record) error
}

// DataFormat names a supported source file format. Parse options are
// passed through SourceConfig.Options; their meaning per format is
// documented on ReadOptions.
type DataFormat string

const (
	FormatCSV     DataFormat = "csv"
	FormatFWF     DataFormat = "fwf"
	FormatXML     DataFormat = "xml"
	FormatJSON    DataFormat = "json"
	FormatJSONL   DataFormat = "jsonl"
	FormatParquet DataFormat = "parquet"
	FormatORC     DataFormat = "orc"
)

// ReadOptions are the parse options for a source, opaque to everything
// but the format reader.
type ReadOptions struct {
	// Delimiter is the CSV field separator. Default ','.
	Delimiter rune `yaml:"delimiter"`

	// NoHeader disables header-row detection for delimited sources;
	// FieldNames must then be set.
	NoHeader bool `yaml:"no_header"`

	// FieldNames overrides or supplies column names for delimited and
	// fixed-width sources.
	FieldNames []string `yaml:"field_names"`

	// Widths are the column widths, in runes, for fixed-width sources.
	Widths []int `yaml:"widths"`

	// RecordTag is the element name of one record for XML sources.
	// Default "row".
	RecordTag string `yaml:"record_tag"`

	// ChunkSize is the number of records pushed per Put call.
	// Default 1000.
	ChunkSize int `yaml:"chunk_size"`
}

// SourceConfig identifies and parameterizes one ingestion source.
// Registration dedup compares configs by exact equality.
type SourceConfig struct {
	Name    string      `yaml:"name"`
	Path    string      `yaml:"path"`
	Format  DataFormat  `yaml:"format"`
	Options ReadOptions `yaml:"options"`
}

// Equal reports exact configuration equality, the dedup criterion for
// registration.
func (c SourceConfig) Equal(other SourceConfig) bool {
	return reflect.DeepEqual(c, other)
}

// chunkSize returns the effective chunk size.
func (c SourceConfig) chunkSize() int {
	if c.Options.ChunkSize > 0 {
		return c.Options.ChunkSize
	}
	return 1000
}

// Source pairs a configuration with the sink that receives its records.
type Source struct {
	Config SourceConfig
	Sink   Sink
}

// Validate checks the parts of a source that must hold for any format.
func (s *Source) Validate() error {
	if s.Sink == nil {
		return ErrNilSink
	}
	if s.Config.Path == "" {
		return ErrEmptyPath
	}
	if s.Config.Format == FormatFWF {
		if len(s.Config.Options.Widths) == 0 {
			return ErrMissingWidths
		}
		if len(s.Config.Options.FieldNames) != 0 &&
			len(s.Config.Options.FieldNames) != len(s.Config.Options.Widths) {
			return ErrWidthNameMismatch
		}
	}
	return nil
}
