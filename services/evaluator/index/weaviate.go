// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index populates a Weaviate vector-search index with evaluation
// output. It is a consumer of the engine, not part of it: the engine
// returns ordered batches of results and this package writes them out.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/online"
	"github.com/Rich-Data-F/superlinked/services/evaluator/schema"
)

// DefaultBatchSize is the number of objects imported per Weaviate batch.
const DefaultBatchSize = 100

// EmbeddingClassName is the Weaviate class holding evaluated embeddings.
const EmbeddingClassName = "Embedding"

// EmbeddingSchema returns the Weaviate class definition for evaluated
// embeddings. Vectors are supplied by the engine, never by a vectorizer.
func EmbeddingSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       EmbeddingClassName,
		Description: "Embeddings produced by the online evaluation engine",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:            "nodeId",
				DataType:        []string{"text"},
				Description:     "Producing node id",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "schemaId",
				DataType:        []string{"text"},
				Description:     "Identity of the evaluated record",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "origin",
				DataType:    []string{"text"},
				Description: "Evaluation scope identifier",
			},
		},
	}
}

// Populator writes evaluation output into Weaviate in batches.
type Populator struct {
	client    *weaviate.Client
	batchSize int
	logger    *slog.Logger
}

// NewPopulator creates a populator over an existing Weaviate client.
func NewPopulator(client *weaviate.Client, logger *slog.Logger) *Populator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Populator{client: client, batchSize: DefaultBatchSize, logger: logger}
}

// EnsureSchema creates the embedding class if it does not exist.
func (p *Populator) EnsureSchema(ctx context.Context) error {
	exists, err := p.client.Schema().ClassExistenceChecker().WithClassName(EmbeddingClassName).Do(ctx)
	if err != nil {
		return fmt.Errorf("check class %s: %w", EmbeddingClassName, err)
	}
	if exists {
		return nil
	}
	if err := p.client.Schema().ClassCreator().WithClass(EmbeddingSchema()).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", EmbeddingClassName, err)
	}
	return nil
}

// Populate writes one node's batch of results to the index.
//
// Description:
//
//	results must be the output of EvaluateSelf for schemas, so the two
//	slices line up by position. Scalar results are rejected; only
//	vector-producing nodes can populate the index.
//
// Outputs:
//
//	int - Number of objects successfully indexed.
//	error - Non-nil if the result shapes are wrong or a batch import
//	        fails.
func (p *Populator) Populate(
	ctx context.Context,
	node *dag.Node,
	ec dag.ExecutionContext,
	schemas []schema.ParsedSchema,
	results []online.EvaluationResult,
) (int, error) {
	if len(schemas) != len(results) {
		return 0, fmt.Errorf("schema count %d does not match result count %d", len(schemas), len(results))
	}

	indexed := 0
	for i := 0; i < len(results); i += p.batchSize {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		end := i + p.batchSize
		if end > len(results) {
			end = len(results)
		}

		objects := make([]*models.Object, 0, end-i)
		for j := i; j < end; j++ {
			vec, err := results[j].Vector()
			if err != nil {
				return indexed, fmt.Errorf("node %s, schema %s: %w", node.ID(), schemas[j].Identity(), err)
			}
			objects = append(objects, &models.Object{
				Class: EmbeddingClassName,
				Properties: map[string]interface{}{
					"nodeId":   node.ID(),
					"schemaId": schemas[j].Identity(),
					"origin":   ec.Origin,
				},
				Vector: models.C11yVector(vec.Float32()),
			})
		}

		result, err := p.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return indexed, fmt.Errorf("batch import failed: %w", err)
		}
		for _, obj := range result {
			if obj.Result != nil && obj.Result.Errors == nil {
				indexed++
			}
		}

		p.logger.Info("indexed batch",
			slog.String("node", node.ID()),
			slog.Int("count", end-i),
			slog.Int("total_indexed", indexed),
		)
	}

	return indexed, nil
}
