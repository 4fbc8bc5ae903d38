// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoricalNode(id string, parents ...string) *Node {
	return NewNode(id, KindCategoricalSimilarity, 3, EmbeddingConfig{
		Categories: []string{"red", "blue"},
	}, parents...)
}

func TestBuilder_Build(t *testing.T) {
	t.Run("valid chain", func(t *testing.T) {
		g, err := NewBuilder().
			AddNode(NewNode("field", KindSchemaField, 0, EmbeddingConfig{Field: "color"})).
			AddNode(categoricalNode("similarity", "field")).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 2, g.NodeCount())

		n, ok := g.Node("similarity")
		require.True(t, ok)
		assert.Equal(t, []string{"field"}, n.Parents())
	})

	t.Run("empty graph", func(t *testing.T) {
		_, err := NewBuilder().Build()
		assert.ErrorIs(t, err, ErrEmptyGraph)
	})

	t.Run("nil node", func(t *testing.T) {
		_, err := NewBuilder().AddNode(nil).Build()
		assert.ErrorIs(t, err, ErrNilNode)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewBuilder().
			AddNode(categoricalNode("a")).
			AddNode(categoricalNode("a")).
			Build()
		require.Error(t, err)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "a", cfgErr.NodeID)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewBuilder().
			AddNode(NewNode("x", NodeKind("mystery"), 3, EmbeddingConfig{})).
			Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mystery")
	})

	t.Run("dangling parent", func(t *testing.T) {
		_, err := NewBuilder().
			AddNode(categoricalNode("child", "ghost")).
			Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("cycle detected with path", func(t *testing.T) {
		_, err := NewBuilder().
			AddNode(categoricalNode("a", "b")).
			AddNode(categoricalNode("b", "c")).
			AddNode(categoricalNode("c", "a")).
			Build()
		require.Error(t, err)
		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.GreaterOrEqual(t, len(cycleErr.Path), 4)
		assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1])
	})

	t.Run("self cycle", func(t *testing.T) {
		_, err := NewBuilder().AddNode(categoricalNode("a", "a")).Build()
		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
	})
}

func TestNode_Immutability(t *testing.T) {
	parents := []string{"p1"}
	n := NewNode("n", KindCategoricalSimilarity, 2, EmbeddingConfig{}, parents...)

	parents[0] = "mutated"
	assert.Equal(t, []string{"p1"}, n.Parents())

	got := n.Parents()
	got[0] = "mutated"
	assert.Equal(t, []string{"p1"}, n.Parents())
}

func TestNode_DefaultVector(t *testing.T) {
	t.Run("configured default of matching length", func(t *testing.T) {
		n := NewNode("n", KindCategoricalSimilarity, 2, EmbeddingConfig{
			DefaultVector: []float64{0.5, 0.5},
		})
		assert.Equal(t, []float64{0.5, 0.5}, []float64(n.DefaultVector()))
	})

	t.Run("length mismatch falls back to zeros", func(t *testing.T) {
		n := NewNode("n", KindCategoricalSimilarity, 3, EmbeddingConfig{
			DefaultVector: []float64{0.5, 0.5},
		})
		assert.Equal(t, []float64{0, 0, 0}, []float64(n.DefaultVector()))
	})

	t.Run("no default configured", func(t *testing.T) {
		n := categoricalNode("n")
		assert.Equal(t, []float64{0, 0, 0}, []float64(n.DefaultVector()))
	})
}

func TestExecutionContext(t *testing.T) {
	ec := NewExecutionContext("app", "v2")
	assert.False(t, ec.IsDefaultPass())
	assert.Equal(t, "app", ec.Origin)
	assert.Equal(t, "v2", ec.Version)
	assert.False(t, ec.ReferenceTime().IsZero())

	dp := NewDefaultPassContext("app", "v2")
	assert.True(t, dp.IsDefaultPass())
}
