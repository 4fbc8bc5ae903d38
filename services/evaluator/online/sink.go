// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package online

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/embedding"
	"github.com/Rich-Data-F/superlinked/services/evaluator/schema"
	"github.com/Rich-Data-F/superlinked/services/evaluator/storage"
)

// IngestSink receives ingested record batches for one source node and
// persists their pre-computed vectors through the storage boundary.
//
// Description:
//
//	A parentless vector node never computes anything at evaluation
//	time; it only loads what ingestion stored for it. IngestSink is
//	that write half: it embeds the configured record field with the
//	node's own embedder and stores the result under the same key
//	contract the evaluation side reads with. The sink is scoped at
//	construction; the evaluating caller must use a matching scope in
//	its ExecutionContext, which keeps keys stable across a session.
//
// Thread Safety: safe for concurrent use if the Writer is.
type IngestSink struct {
	node     *dag.Node
	embedder embedding.Embedder
	writer   storage.Writer
	schema   string
	field    string
	idField  string
	origin   string
	version  string
	logger   *slog.Logger
}

// SinkConfig configures an IngestSink.
type SinkConfig struct {
	// Schema is the logical schema name stamped on ingested records.
	Schema string

	// Field is the record field to embed.
	Field string

	// IDField optionally names the record field holding the record's
	// identity. When empty, identity is derived from the full record.
	IDField string

	// Origin and Version scope the storage keys, matching the
	// ExecutionContext the evaluation side will use.
	Origin  string
	Version string
}

// NewIngestSink builds the sink for one source node.
//
// Outputs:
//
//	*IngestSink - The sink.
//	error - ConfigurationError when the node declares parents (only
//	        parentless nodes are fed by ingestion) or its embedding
//	        configuration is unusable.
func NewIngestSink(node *dag.Node, writer storage.Writer, cfg SinkConfig, logger *slog.Logger) (*IngestSink, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	if writer == nil {
		return nil, ErrNilStorage
	}
	if node.ParentCount() != 0 {
		return nil, dag.NewConfigurationError(node.ID(), "only parentless nodes accept ingested data")
	}
	if cfg.Field == "" {
		return nil, dag.NewConfigurationError(node.ID(), "sink requires a record field")
	}
	embedder, err := embedding.ForNode(node)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, dag.NewConfigurationError(node.ID(), "kind %s has no vector form to ingest", node.Kind())
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IngestSink{
		node:     node,
		embedder: embedder,
		writer:   writer,
		schema:   cfg.Schema,
		field:    cfg.Field,
		idField:  cfg.IDField,
		origin:   cfg.Origin,
		version:  cfg.Version,
		logger:   logger,
	}, nil
}

// Put embeds and persists one batch of ingested records.
//
// Description:
//
//	Records are maps from field name to value, as produced by the
//	ingestion readers. Each record is embedded with the node's own
//	transformation under a synthetic non-default context and stored
//	under the session key contract. The batch either fully succeeds or
//	returns the first error.
func (s *IngestSink) Put(ctx context.Context, records []map[string]any) error {
	ec := dag.NewExecutionContext(s.origin, s.version)

	for _, record := range records {
		value, ok := record[s.field]
		if !ok {
			return fmt.Errorf("node %s: ingested record has no field %q", s.node.ID(), s.field)
		}

		vec, err := s.embedder.Embed(value, ec)
		if err != nil {
			return fmt.Errorf("node %s: embed ingested value: %w", s.node.ID(), err)
		}

		parsed := schema.ParsedSchema{Name: s.schema, Fields: record}
		if s.idField != "" {
			if id, ok := record[s.idField]; ok {
				parsed.ID = fmt.Sprintf("%v", id)
			}
		}
		key := storage.Key{
			Origin:   s.origin,
			Version:  s.version,
			NodeID:   s.node.ID(),
			SchemaID: parsed.Identity(),
		}
		if err := s.writer.Store(ctx, key, vec); err != nil {
			return err
		}
	}

	s.logger.Debug("ingested batch persisted",
		slog.String("node", s.node.ID()),
		slog.Int("records", len(records)),
	)
	return nil
}
