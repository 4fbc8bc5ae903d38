// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dag holds the static description of the feature-computation
// graph: immutable nodes, their per-kind configuration, the arity policies
// attached to node kinds, and the builder that validates graph structure
// before any evaluation happens.
package dag

import (
	"time"

	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// NodeKind identifies the computation a node performs. The set is closed;
// each kind declares its own arity policy and embedding configuration.
type NodeKind string

const (
	// KindSchemaField reads a raw field value from the input record.
	// It is the scalar leaf that feeds transformation nodes.
	KindSchemaField NodeKind = "schema_field"

	// KindCategoricalSimilarity embeds a category label into an n-hot
	// similarity vector.
	KindCategoricalSimilarity NodeKind = "categorical_similarity"

	// KindTextEmbedding embeds free text into a hashed bag-of-tokens
	// vector.
	KindTextEmbedding NodeKind = "text_embedding"

	// KindNumberEmbedding embeds a bounded numeric value.
	KindNumberEmbedding NodeKind = "number_embedding"

	// KindRecency embeds a timestamp by decaying it over configured
	// periods.
	KindRecency NodeKind = "recency"
)

// ParentValidation returns the arity policy declared by the node kind.
//
// Description:
//
//	Every kind in this family is either a leaf or a single-input
//	transformation, so policies top out at one parent. The policy is a
//	property of the kind, not of the recursion engine: a new kind can
//	declare a looser or stricter policy without the engine changing.
func (k NodeKind) ParentValidation() ParentValidationType {
	switch k {
	case KindSchemaField:
		return Exactly(0)
	case KindCategoricalSimilarity, KindTextEmbedding, KindNumberEmbedding, KindRecency:
		return AtMost(1)
	default:
		return Any()
	}
}

// Valid reports whether the kind is a member of the closed set.
func (k NodeKind) Valid() bool {
	switch k {
	case KindSchemaField, KindCategoricalSimilarity, KindTextEmbedding,
		KindNumberEmbedding, KindRecency:
		return true
	}
	return false
}

// EmbeddingConfig is the per-kind embedding descriptor carried by a Node.
// Only the fields relevant to the node's kind are consulted.
type EmbeddingConfig struct {
	// Field is the input record field consumed by KindSchemaField.
	Field string

	// Categories are the known labels for KindCategoricalSimilarity.
	Categories []string

	// NegativeFilter is the value written into non-matching category
	// slots. Zero means plain one-hot.
	NegativeFilter float64

	// Min and Max bound the input for KindNumberEmbedding.
	Min float64
	Max float64

	// Periods are the decay horizons for KindRecency, most recent first.
	Periods []time.Duration

	// DefaultVector overrides the zero default returned during a
	// default-vector pass. When set, its length must equal the node
	// length.
	DefaultVector []float64
}

// Node is the immutable static description of one computation step.
// It is built once at graph-construction time and shared read-only by the
// whole evaluation session.
type Node struct {
	id      string
	kind    NodeKind
	length  int
	config  EmbeddingConfig
	parents []string
}

// NewNode creates a static node description.
//
// Inputs:
//
//	id - Unique node identifier within the graph.
//	kind - The node kind. Must be a member of the closed set.
//	length - Declared output vector length. Zero for scalar leaves.
//	config - Per-kind embedding configuration.
//	parents - Ordered parent node ids. May be empty.
func NewNode(id string, kind NodeKind, length int, config EmbeddingConfig, parents ...string) *Node {
	return &Node{
		id:      id,
		kind:    kind,
		length:  length,
		config:  config,
		parents: append([]string(nil), parents...),
	}
}

// ID returns the node identifier.
func (n *Node) ID() string { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Length returns the declared output vector length. Every vector this
// node produces has exactly this length.
func (n *Node) Length() int { return n.length }

// Config returns the embedding configuration.
func (n *Node) Config() EmbeddingConfig { return n.config }

// Parents returns the ordered parent ids. The returned slice is a copy.
func (n *Node) Parents() []string {
	return append([]string(nil), n.parents...)
}

// ParentCount returns the declared parent count, fixed for the node's
// lifetime.
func (n *Node) ParentCount() int { return len(n.parents) }

// DefaultVector returns the statically configured default vector for this
// node, dimensioned to the declared length. Used only during a
// default-vector pass.
func (n *Node) DefaultVector() vector.Vector {
	if len(n.config.DefaultVector) == n.length && n.length > 0 {
		out := make(vector.Vector, n.length)
		copy(out, n.config.DefaultVector)
		return out
	}
	return vector.Zeros(n.length)
}
