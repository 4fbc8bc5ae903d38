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
	"math"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// numberLength is the fixed output dimension of the number embedder:
// the value is mapped onto a quarter circle so that cosine similarity
// between two embeddings decreases monotonically with their distance.
const numberLength = 3

// numberEmbedder embeds a bounded numeric value. Inputs are clamped to
// [Min, Max], normalized to [0, 1] and projected to
// [sin(x*pi/2), cos(x*pi/2), 1] before L2 normalization.
type numberEmbedder struct {
	min float64
	max float64
}

func newNumberEmbedder(nodeID string, length int, cfg dag.EmbeddingConfig) (Embedder, error) {
	if cfg.Max <= cfg.Min {
		return nil, dag.NewConfigurationError(nodeID, "number embedding requires max > min, got [%v, %v]", cfg.Min, cfg.Max)
	}
	if length != numberLength {
		return nil, dag.NewConfigurationError(nodeID, "number embedding length must be %d, got %d", numberLength, length)
	}
	return &numberEmbedder{min: cfg.Min, max: cfg.Max}, nil
}

func (e *numberEmbedder) Length() int {
	return numberLength
}

func (e *numberEmbedder) Embed(value any, _ dag.ExecutionContext) (vector.Vector, error) {
	x, ok := asFloat(value)
	if !ok {
		return nil, &ValueTypeError{Want: "numeric value", Got: value}
	}

	if x < e.min {
		x = e.min
	}
	if x > e.max {
		x = e.max
	}
	norm := (x - e.min) / (e.max - e.min)

	angle := norm * math.Pi / 2
	out := vector.Vector{math.Sin(angle), math.Cos(angle), 1}
	return out.Normalize(), nil
}
