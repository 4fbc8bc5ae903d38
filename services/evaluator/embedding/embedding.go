// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package embedding implements the per-kind transformations invoked at
// evaluation time. Only the call contract matters to the engine: a value
// and an execution context go in, a fixed-length vector comes out.
//
// Every embedder is pure: the same value under the same context always
// produces the same vector. The engine relies on this to precompute a
// parent's batch once instead of once per (node, schema) pair.
package embedding

import (
	"fmt"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// Embedder turns one upstream value into a fixed-length vector.
type Embedder interface {
	// Length returns the output vector dimension. Every vector returned
	// by Embed has exactly this length.
	Length() int

	// Embed transforms the value under the given context.
	Embed(value any, ctx dag.ExecutionContext) (vector.Vector, error)
}

// ValueTypeError reports an input value whose shape does not match what
// the embedder expects.
type ValueTypeError struct {
	Want string
	Got  any
}

func (e *ValueTypeError) Error() string {
	return fmt.Sprintf("embedder expects %s, got %T", e.Want, e.Got)
}

// ForNode builds the embedder declared by a node's kind and configuration.
//
// Description:
//
//	KindSchemaField has no transformation and returns a nil embedder.
//	Any configuration that cannot yield a well-formed embedder (for
//	example a categorical node whose length does not match its category
//	count) is a ConfigurationError, surfaced before evaluation.
//
// Outputs:
//
//	Embedder - The kind's transformation, nil for scalar leaves.
//	error - Non-nil on invalid configuration.
func ForNode(node *dag.Node) (Embedder, error) {
	cfg := node.Config()
	switch node.Kind() {
	case dag.KindSchemaField:
		return nil, nil
	case dag.KindCategoricalSimilarity:
		return newCategoricalSimilarity(node.ID(), node.Length(), cfg)
	case dag.KindTextEmbedding:
		return newTextEmbedder(node.ID(), node.Length())
	case dag.KindNumberEmbedding:
		return newNumberEmbedder(node.ID(), node.Length(), cfg)
	case dag.KindRecency:
		return newRecencyEmbedder(node.ID(), node.Length(), cfg)
	default:
		return nil, dag.NewConfigurationError(node.ID(), "%v: %q", dag.ErrUnknownKind, node.Kind())
	}
}

// asString coerces the value shapes that label-consuming embedders accept.
func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

// asFloat coerces the numeric shapes that number-consuming embedders
// accept.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
