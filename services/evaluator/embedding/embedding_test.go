// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedding

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

func execCtx() dag.ExecutionContext {
	return dag.NewExecutionContext("test", "v1")
}

func TestForNode(t *testing.T) {
	t.Run("schema field has no embedder", func(t *testing.T) {
		n := dag.NewNode("f", dag.KindSchemaField, 0, dag.EmbeddingConfig{Field: "color"})
		e, err := ForNode(n)
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("categorical with matching length", func(t *testing.T) {
		n := dag.NewNode("c", dag.KindCategoricalSimilarity, 4, dag.EmbeddingConfig{
			Categories: []string{"red", "green", "blue"},
		})
		e, err := ForNode(n)
		require.NoError(t, err)
		assert.Equal(t, 4, e.Length())
	})

	t.Run("categorical length mismatch is a configuration error", func(t *testing.T) {
		n := dag.NewNode("c", dag.KindCategoricalSimilarity, 3, dag.EmbeddingConfig{
			Categories: []string{"red", "green", "blue"},
		})
		_, err := ForNode(n)
		var cfgErr *dag.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "c", cfgErr.NodeID)
	})
}

func TestCategoricalSimilarity(t *testing.T) {
	n := dag.NewNode("c", dag.KindCategoricalSimilarity, 4, dag.EmbeddingConfig{
		Categories: []string{"red", "green", "blue"},
	})
	e, err := ForNode(n)
	require.NoError(t, err)

	t.Run("known label lights its slot", func(t *testing.T) {
		got, err := e.Embed("blue", execCtx())
		require.NoError(t, err)
		assert.Equal(t, vector.Vector{0, 0, 1, 0}, got)
	})

	t.Run("same label always embeds identically", func(t *testing.T) {
		first, err := e.Embed("blue", execCtx())
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := e.Embed("blue", execCtx())
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("unknown label lights the other slot", func(t *testing.T) {
		got, err := e.Embed("chartreuse", execCtx())
		require.NoError(t, err)
		assert.Equal(t, vector.Vector{0, 0, 0, 1}, got)
	})

	t.Run("negative filter fills non-matching slots", func(t *testing.T) {
		nf := dag.NewNode("c", dag.KindCategoricalSimilarity, 3, dag.EmbeddingConfig{
			Categories:     []string{"red", "blue"},
			NegativeFilter: -0.5,
		})
		e, err := ForNode(nf)
		require.NoError(t, err)
		got, err := e.Embed("red", execCtx())
		require.NoError(t, err)
		assert.Equal(t, vector.Vector{1, -0.5, -0.5}, got)
	})

	t.Run("non-string value is a type error", func(t *testing.T) {
		_, err := e.Embed(3.14, execCtx())
		var typeErr *ValueTypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, 3.14, typeErr.Got)
	})

	t.Run("empty vocabulary rejected", func(t *testing.T) {
		n := dag.NewNode("c", dag.KindCategoricalSimilarity, 1, dag.EmbeddingConfig{})
		_, err := ForNode(n)
		assert.Error(t, err)
	})
}

func TestTextEmbedder(t *testing.T) {
	n := dag.NewNode("t", dag.KindTextEmbedding, 16, dag.EmbeddingConfig{})
	e, err := ForNode(n)
	require.NoError(t, err)

	t.Run("deterministic", func(t *testing.T) {
		a, err := e.Embed("quick brown fox", execCtx())
		require.NoError(t, err)
		b, err := e.Embed("quick brown fox", execCtx())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("case insensitive", func(t *testing.T) {
		a, _ := e.Embed("Quick Brown", execCtx())
		b, _ := e.Embed("quick brown", execCtx())
		assert.Equal(t, a, b)
	})

	t.Run("unit norm for non-empty text", func(t *testing.T) {
		v, err := e.Embed("hello world", execCtx())
		require.NoError(t, err)
		var sum float64
		for _, x := range v {
			sum += x * x
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-9)
	})

	t.Run("empty text is the zero vector", func(t *testing.T) {
		v, err := e.Embed("", execCtx())
		require.NoError(t, err)
		assert.Equal(t, vector.Zeros(16), v)
	})

	t.Run("zero length rejected", func(t *testing.T) {
		bad := dag.NewNode("t", dag.KindTextEmbedding, 0, dag.EmbeddingConfig{})
		_, err := ForNode(bad)
		assert.Error(t, err)
	})
}

func TestNumberEmbedder(t *testing.T) {
	n := dag.NewNode("n", dag.KindNumberEmbedding, 3, dag.EmbeddingConfig{Min: 0, Max: 100})
	e, err := ForNode(n)
	require.NoError(t, err)

	t.Run("min maps to quarter-circle start", func(t *testing.T) {
		v, err := e.Embed(0, execCtx())
		require.NoError(t, err)
		want := vector.Vector{0, 1, 1}.Normalize()
		for i := range want {
			assert.InDelta(t, want[i], v[i], 1e-12)
		}
	})

	t.Run("max maps to quarter-circle end", func(t *testing.T) {
		v, err := e.Embed(100, execCtx())
		require.NoError(t, err)
		want := vector.Vector{1, 0, 1}.Normalize()
		for i := range want {
			assert.InDelta(t, want[i], v[i], 1e-12)
		}
	})

	t.Run("out of range is clamped", func(t *testing.T) {
		below, _ := e.Embed(-50, execCtx())
		atMin, _ := e.Embed(0, execCtx())
		assert.Equal(t, atMin, below)

		above, _ := e.Embed(1000, execCtx())
		atMax, _ := e.Embed(100, execCtx())
		assert.Equal(t, atMax, above)
	})

	t.Run("closer values are more similar", func(t *testing.T) {
		a, _ := e.Embed(10, execCtx())
		b, _ := e.Embed(20, execCtx())
		c, _ := e.Embed(90, execCtx())
		assert.Greater(t, dot(a, b), dot(a, c))
	})

	t.Run("integer input accepted", func(t *testing.T) {
		v, err := e.Embed(int64(50), execCtx())
		require.NoError(t, err)
		assert.Len(t, v, 3)
	})

	t.Run("invalid bounds rejected", func(t *testing.T) {
		bad := dag.NewNode("n", dag.KindNumberEmbedding, 3, dag.EmbeddingConfig{Min: 5, Max: 5})
		_, err := ForNode(bad)
		assert.Error(t, err)
	})

	t.Run("wrong length rejected", func(t *testing.T) {
		bad := dag.NewNode("n", dag.KindNumberEmbedding, 4, dag.EmbeddingConfig{Min: 0, Max: 1})
		_, err := ForNode(bad)
		assert.Error(t, err)
	})
}

func TestRecencyEmbedder(t *testing.T) {
	day := 24 * time.Hour
	n := dag.NewNode("r", dag.KindRecency, 2, dag.EmbeddingConfig{
		Periods: []time.Duration{day, 7 * day},
	})
	e, err := ForNode(n)
	require.NoError(t, err)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := dag.ExecutionContext{Origin: "test", Version: "v1", Now: now.Unix()}

	t.Run("event at reference time scores one everywhere", func(t *testing.T) {
		v, err := e.Embed(now, ctx)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v[0], 1e-12)
		assert.InDelta(t, 1.0, v[1], 1e-12)
	})

	t.Run("event decays per period", func(t *testing.T) {
		v, err := e.Embed(now.Add(-12*time.Hour), ctx)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, v[0], 1e-9)
		assert.InDelta(t, 1-0.5/7, v[1], 1e-9)
	})

	t.Run("event older than period scores zero", func(t *testing.T) {
		v, err := e.Embed(now.Add(-3*day), ctx)
		require.NoError(t, err)
		assert.Zero(t, v[0])
		assert.Greater(t, v[1], 0.0)
	})

	t.Run("future event treated as now", func(t *testing.T) {
		v, err := e.Embed(now.Add(48*time.Hour), ctx)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v[0], 1e-12)
	})

	t.Run("unix seconds accepted", func(t *testing.T) {
		v, err := e.Embed(now.Unix(), ctx)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v[0], 1e-12)
	})

	t.Run("negative period rejected", func(t *testing.T) {
		bad := dag.NewNode("r", dag.KindRecency, 1, dag.EmbeddingConfig{
			Periods: []time.Duration{-time.Hour},
		})
		_, err := ForNode(bad)
		assert.Error(t, err)
	})
}

func dot(a, b vector.Vector) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
