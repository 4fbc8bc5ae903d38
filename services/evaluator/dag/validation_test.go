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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentValidationType_Allows(t *testing.T) {
	tests := []struct {
		name   string
		policy ParentValidationType
		count  int
		want   bool
	}{
		{"exactly zero accepts zero", Exactly(0), 0, true},
		{"exactly zero rejects one", Exactly(0), 1, false},
		{"exactly two rejects one", Exactly(2), 1, false},
		{"exactly two accepts two", Exactly(2), 2, true},
		{"at most one accepts zero", AtMost(1), 0, true},
		{"at most one accepts one", AtMost(1), 1, true},
		{"at most one rejects two", AtMost(1), 2, false},
		{"at least one rejects zero", AtLeast(1), 0, false},
		{"at least one accepts many", AtLeast(1), 10, true},
		{"any accepts zero", Any(), 0, true},
		{"any accepts many", Any(), 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Allows(tt.count))
		})
	}
}

func TestParentValidationType_String(t *testing.T) {
	assert.Equal(t, "exactly 0 parent(s)", Exactly(0).String())
	assert.Equal(t, "at most 1 parent(s)", AtMost(1).String())
	assert.Equal(t, "at least 2 parent(s)", AtLeast(2).String())
	assert.Equal(t, "any number of parents", Any().String())
}

func TestNodeKind_ParentValidation(t *testing.T) {
	assert.Equal(t, Exactly(0), KindSchemaField.ParentValidation())

	for _, kind := range []NodeKind{
		KindCategoricalSimilarity, KindTextEmbedding, KindNumberEmbedding, KindRecency,
	} {
		t.Run(string(kind), func(t *testing.T) {
			policy := kind.ParentValidation()
			assert.True(t, policy.Allows(0))
			assert.True(t, policy.Allows(1))
			assert.False(t, policy.Allows(2))
		})
	}
}

func TestNodeKind_Valid(t *testing.T) {
	assert.True(t, KindCategoricalSimilarity.Valid())
	assert.True(t, KindSchemaField.Valid())
	assert.False(t, NodeKind("convolution").Valid())
	assert.False(t, NodeKind("").Valid())
}
