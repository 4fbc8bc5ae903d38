// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField(t *testing.T) {
	s := New("product", "p1", map[string]any{"color": "blue", "price": 9.5})

	v, ok := s.Field("color")
	require.True(t, ok)
	assert.Equal(t, "blue", v)

	_, ok = s.Field("missing")
	assert.False(t, ok)
}

func TestIdentity_ExplicitID(t *testing.T) {
	s := New("product", "p1", map[string]any{"color": "blue"})
	assert.Equal(t, "product/p1", s.Identity())
}

func TestIdentity_Derived(t *testing.T) {
	t.Run("deterministic across calls", func(t *testing.T) {
		s := New("product", "", map[string]any{"color": "blue", "size": int64(3)})
		assert.Equal(t, s.Identity(), s.Identity())
	})

	t.Run("independent of construction order", func(t *testing.T) {
		a := New("product", "", map[string]any{"color": "blue", "size": int64(3)})
		b := New("product", "", map[string]any{"size": int64(3), "color": "blue"})
		assert.Equal(t, a.Identity(), b.Identity())
	})

	t.Run("sensitive to values", func(t *testing.T) {
		a := New("product", "", map[string]any{"color": "blue"})
		b := New("product", "", map[string]any{"color": "red"})
		assert.NotEqual(t, a.Identity(), b.Identity())
	})

	t.Run("sensitive to schema name", func(t *testing.T) {
		a := New("product", "", map[string]any{"color": "blue"})
		b := New("order", "", map[string]any{"color": "blue"})
		assert.NotEqual(t, a.Identity(), b.Identity())
	})

	t.Run("carries schema name prefix", func(t *testing.T) {
		s := New("product", "", map[string]any{"color": "blue"})
		assert.True(t, strings.HasPrefix(s.Identity(), "product/"))
	})
}
