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
	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// categoricalSimilarity embeds a category label into an n-hot vector.
//
// Description:
//
//	The output has one slot per configured category plus a trailing
//	"other" slot for labels outside the vocabulary. The matching slot is
//	set to 1; every other slot carries the configured negative filter
//	(0 by default). Unknown labels light only the "other" slot, so two
//	unknown labels are still similar to each other and dissimilar to
//	every known category.
type categoricalSimilarity struct {
	categories     map[string]int
	negativeFilter float64
	length         int
}

func newCategoricalSimilarity(nodeID string, length int, cfg dag.EmbeddingConfig) (Embedder, error) {
	if len(cfg.Categories) == 0 {
		return nil, dag.NewConfigurationError(nodeID, "categorical similarity requires at least one category")
	}
	if length != len(cfg.Categories)+1 {
		return nil, dag.NewConfigurationError(nodeID,
			"declared length %d does not match %d categories plus the other slot", length, len(cfg.Categories))
	}

	index := make(map[string]int, len(cfg.Categories))
	for i, c := range cfg.Categories {
		index[c] = i
	}
	return &categoricalSimilarity{
		categories:     index,
		negativeFilter: cfg.NegativeFilter,
		length:         length,
	}, nil
}

func (e *categoricalSimilarity) Length() int {
	return e.length
}

func (e *categoricalSimilarity) Embed(value any, _ dag.ExecutionContext) (vector.Vector, error) {
	label, ok := asString(value)
	if !ok {
		return nil, &ValueTypeError{Want: "string label", Got: value}
	}

	out := make(vector.Vector, e.length)
	if e.negativeFilter != 0 {
		for i := range out {
			out[i] = e.negativeFilter
		}
	}

	slot, known := e.categories[label]
	if !known {
		slot = e.length - 1 // the "other" slot
	}
	out[slot] = 1
	return out, nil
}
