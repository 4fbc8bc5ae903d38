// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/online"
	"github.com/Rich-Data-F/superlinked/services/evaluator/schema"
)

// Indexer receives one node's evaluated batch. *Populator is the
// production implementation.
type Indexer interface {
	Populate(ctx context.Context, node *dag.Node, ec dag.ExecutionContext, schemas []schema.ParsedSchema, results []online.EvaluationResult) (int, error)
}

// RecordSink is the write half an indexing sink wraps, matching the
// ingestion loader's sink contract.
type RecordSink interface {
	Put(ctx context.Context, records []map[string]any) error
}

// SinkConfig scopes an indexing sink the same way the wrapped ingest
// sink is scoped, so evaluation reads back what ingestion stored.
type SinkConfig struct {
	// Schema is the logical schema name stamped on ingested records.
	Schema string

	// IDField optionally names the record field holding the record's
	// identity. When empty, identity is derived from the full record.
	IDField string

	// Origin and Version scope the evaluation context.
	Origin  string
	Version string
}

// Sink forwards ingested batches to an inner sink, then evaluates them
// through the node and populates the index with the results.
//
// Description:
//
//	The inner sink persists vectors first, so the evaluation pass that
//	follows loads exactly what was just stored. Record identity is
//	derived the same way on both sides; a drift there would make the
//	evaluation miss its own ingested vectors.
//
// Thread Safety: safe for concurrent use if the inner sink and the
// indexer are.
type Sink struct {
	inner   RecordSink
	node    *online.OnlineNode
	indexer Indexer
	schema  string
	idField string
	origin  string
	version string
	logger  *slog.Logger
}

// NewSink wraps inner so every ingested batch is also indexed.
func NewSink(inner RecordSink, node *online.OnlineNode, indexer Indexer, cfg SinkConfig, logger *slog.Logger) (*Sink, error) {
	if inner == nil {
		return nil, fmt.Errorf("indexing sink requires an inner sink")
	}
	if node == nil {
		return nil, fmt.Errorf("indexing sink requires a node")
	}
	if indexer == nil {
		return nil, fmt.Errorf("indexing sink requires an indexer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		inner:   inner,
		node:    node,
		indexer: indexer,
		schema:  cfg.Schema,
		idField: cfg.IDField,
		origin:  cfg.Origin,
		version: cfg.Version,
		logger:  logger,
	}, nil
}

// Put persists the batch through the inner sink, evaluates it, and
// writes the resulting vectors to the index.
func (s *Sink) Put(ctx context.Context, records []map[string]any) error {
	if err := s.inner.Put(ctx, records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	schemas := make([]schema.ParsedSchema, len(records))
	for i, record := range records {
		parsed := schema.ParsedSchema{Name: s.schema, Fields: record}
		if s.idField != "" {
			if id, ok := record[s.idField]; ok {
				parsed.ID = fmt.Sprintf("%v", id)
			}
		}
		schemas[i] = parsed
	}

	ec := dag.NewExecutionContext(s.origin, s.version)
	results, err := s.node.EvaluateSelf(ctx, schemas, ec)
	if err != nil {
		return fmt.Errorf("node %s: evaluate ingested batch: %w", s.node.Node().ID(), err)
	}

	indexed, err := s.indexer.Populate(ctx, s.node.Node(), ec, schemas, results)
	if err != nil {
		return fmt.Errorf("node %s: index ingested batch: %w", s.node.Node().ID(), err)
	}
	s.logger.Debug("ingested batch indexed",
		slog.String("node", s.node.Node().ID()),
		slog.Int("indexed", indexed),
	)
	return nil
}
