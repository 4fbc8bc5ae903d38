// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package online implements the runtime half of the evaluation engine:
// OnlineNode wraps one static node, holds its validated parent wrappers
// and a shared storage manager, and exposes the recursive batch
// evaluation entrypoints.
//
// Evaluation is pure: given the same (node, batch, context) triple the
// result is identical, and the only externally observable side effects
// are storage reads by parentless nodes. Purity is what makes it valid
// for a caller to precompute a parent's whole batch once instead of
// pulling it once per (node, schema) pair.
package online

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/embedding"
	"github.com/Rich-Data-F/superlinked/services/evaluator/schema"
	"github.com/Rich-Data-F/superlinked/services/evaluator/storage"
)

// OnlineNode is the runtime evaluator for one static node.
//
// Description:
//
//	An OnlineNode is built once per execution session. Construction
//	validates the parent list against the node kind's arity policy and
//	builds the kind's embedder; any violation is a ConfigurationError
//	raised before evaluation can happen. After construction the node is
//	immutable and retains no per-call state.
//
// Thread Safety:
//
//	Safe for concurrent use. Two evaluations over disjoint batches may
//	run concurrently without coordination; the storage manager must
//	support concurrent reads.
type OnlineNode struct {
	node        *dag.Node
	parents     []*OnlineNode
	store       storage.Manager
	embedder    embedding.Embedder
	logger      *slog.Logger
	maxParallel int
}

// NewOnlineNode builds the runtime wrapper for a static node.
//
// Inputs:
//
//	node - The static node. Must not be nil.
//	parents - Runtime wrappers for the node's parents, in declared order.
//	store - The shared storage manager. Must not be nil.
//	logger - Logger for evaluation events. If nil, slog.Default() is used.
//
// Outputs:
//
//	*OnlineNode - The wrapper, nil on error.
//	error - ConfigurationError when the parent list violates the kind's
//	        arity policy, does not mirror the declared parent ids, or
//	        the kind's embedding configuration is unusable.
func NewOnlineNode(node *dag.Node, parents []*OnlineNode, store storage.Manager, logger *slog.Logger) (*OnlineNode, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	if store == nil {
		return nil, ErrNilStorage
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy := node.Kind().ParentValidation()
	if !policy.Allows(len(parents)) {
		return nil, dag.NewConfigurationError(node.ID(),
			"kind %s requires %s, got %d", node.Kind(), policy, len(parents))
	}

	declared := node.Parents()
	if len(parents) != len(declared) {
		return nil, dag.NewConfigurationError(node.ID(),
			"declared %d parent(s), wired %d", len(declared), len(parents))
	}
	for i, p := range parents {
		if p == nil {
			return nil, dag.NewConfigurationError(node.ID(), "parent %d is nil", i)
		}
		if p.node.ID() != declared[i] {
			return nil, dag.NewConfigurationError(node.ID(),
				"parent %d is %s, declared %s", i, p.node.ID(), declared[i])
		}
	}

	embedder, err := embedding.ForNode(node)
	if err != nil {
		return nil, err
	}

	return &OnlineNode{
		node:     node,
		parents:  append([]*OnlineNode(nil), parents...),
		store:    store,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Node returns the wrapped static node.
func (o *OnlineNode) Node() *dag.Node { return o.node }

// Length returns the node's declared output vector length.
func (o *OnlineNode) Length() int { return o.node.Length() }

// EvaluateSelf evaluates a whole batch at this node.
//
// Description:
//
//	Returns one result per schema, in input order. Under a default-pass
//	context the node's configured default vector is returned for every
//	record without touching parents or storage; the default-pass flag
//	is batch-scoped. Otherwise records are evaluated independently (and
//	possibly in parallel); the output order still matches the input
//	order. A failure on any record fails the whole batch; there is no
//	partial result and no retry.
//
// Inputs:
//
//	ctx - Go context for cancellation. Must not be nil.
//	schemas - Ordered input batch.
//	ec - Per-call evaluation parameters.
//
// Outputs:
//
//	[]EvaluationResult - Same length and order as schemas.
//	error - Non-nil if any record fails; identifies node and schema.
func (o *OnlineNode) EvaluateSelf(ctx context.Context, schemas []schema.ParsedSchema, ec dag.ExecutionContext) ([]EvaluationResult, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	initMetrics(o.logger)

	ctx, span := tracer.Start(ctx, "online.EvaluateSelf",
		trace.WithAttributes(
			attribute.String("node.id", o.node.ID()),
			attribute.String("node.kind", string(o.node.Kind())),
			attribute.Int("batch.size", len(schemas)),
			attribute.Bool("default_pass", ec.IsDefaultPass()),
		),
	)
	defer span.End()
	start := time.Now()

	if ec.IsDefaultPass() {
		results := make([]EvaluationResult, len(schemas))
		for i := range schemas {
			results[i] = o.defaultResult()
		}
		o.recordBatch(ctx, start, len(schemas))
		return results, nil
	}

	results := make([]EvaluationResult, len(schemas))
	group, groupCtx := errgroup.WithContext(ctx)
	if o.maxParallel > 0 {
		group.SetLimit(o.maxParallel)
	}
	for i := range schemas {
		group.Go(func() error {
			res, err := o.evaluateSingle(groupCtx, schemas[i], ec)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("batch evaluation failed",
			slog.String("node", o.node.ID()),
			slog.Int("batch_size", len(schemas)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	o.recordBatch(ctx, start, len(schemas))
	return results, nil
}

// EvaluateNextSingle evaluates one record at this node, used by a child
// to pull one upstream value. Observably identical to taking the record's
// entry from EvaluateSelf over any batch containing it.
func (o *OnlineNode) EvaluateNextSingle(ctx context.Context, s schema.ParsedSchema, ec dag.ExecutionContext) (EvaluationResult, error) {
	if ctx == nil {
		return EvaluationResult{}, ErrNilContext
	}
	if ec.IsDefaultPass() {
		return o.defaultResult(), nil
	}
	return o.evaluateSingle(ctx, s, ec)
}

// defaultResult is the short-circuit value for a default-vector pass:
// the statically configured default vector, dimensioned to the node's
// declared length. Scalar leaves have no vector form and yield nil.
func (o *OnlineNode) defaultResult() EvaluationResult {
	if o.node.Kind() == dag.KindSchemaField {
		return newResult(nil)
	}
	return newResult(o.node.DefaultVector())
}

// evaluateSingle computes one record outside the default pass.
func (o *OnlineNode) evaluateSingle(ctx context.Context, s schema.ParsedSchema, ec dag.ExecutionContext) (EvaluationResult, error) {
	if o.node.Kind() == dag.KindSchemaField {
		value, ok := s.Field(o.node.Config().Field)
		if !ok {
			return EvaluationResult{}, &TypeMismatchError{
				NodeID:   o.node.ID(),
				SchemaID: s.Identity(),
				Reason:   "record has no field " + o.node.Config().Field,
			}
		}
		return newResult(value), nil
	}

	if len(o.parents) == 0 {
		return o.loadStored(ctx, s, ec)
	}

	parent := o.parents[0]
	upstream, err := parent.EvaluateNextSingle(ctx, s, ec)
	if err != nil {
		return EvaluationResult{}, err
	}

	vec, err := o.embedder.Embed(upstream.Main, ec)
	if err != nil {
		var typeErr *embedding.ValueTypeError
		if errors.As(err, &typeErr) {
			return EvaluationResult{}, &TypeMismatchError{
				NodeID:   o.node.ID(),
				ParentID: parent.node.ID(),
				SchemaID: s.Identity(),
				Reason:   typeErr.Error(),
			}
		}
		return EvaluationResult{}, err
	}

	if evaluations != nil {
		evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("node", o.node.ID())))
	}
	return newResult(vec), nil
}

// loadStored serves a parentless vector node from the backing store.
func (o *OnlineNode) loadStored(ctx context.Context, s schema.ParsedSchema, ec dag.ExecutionContext) (EvaluationResult, error) {
	key := storage.Key{
		Origin:   ec.Origin,
		Version:  ec.Version,
		NodeID:   o.node.ID(),
		SchemaID: s.Identity(),
	}

	vec, found, err := o.store.Load(ctx, key)
	if err != nil {
		return EvaluationResult{}, err
	}
	if !found {
		if storageMiss != nil {
			storageMiss.Add(ctx, 1, metric.WithAttributes(attribute.String("node", o.node.ID())))
		}
		return EvaluationResult{}, &MissingStoredResultError{
			NodeID:   o.node.ID(),
			SchemaID: s.Identity(),
		}
	}
	if err := vec.CheckDim(o.node.Length()); err != nil {
		return EvaluationResult{}, dag.NewConfigurationError(o.node.ID(), "stored result for %s: %v", s.Identity(), err)
	}

	if evaluations != nil {
		evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("node", o.node.ID())))
	}
	return newResult(vec), nil
}

func (o *OnlineNode) recordBatch(ctx context.Context, start time.Time, size int) {
	if batchLatency != nil {
		batchLatency.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(
				attribute.String("node", o.node.ID()),
				attribute.Int("batch_size", size),
			),
		)
	}
}
