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
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// textEmbedder hashes lowercased tokens into a fixed number of buckets
// and L2-normalizes the result. It is deterministic across processes
// (FNV-1a, no seeding), which the storage and purity guarantees depend on.
type textEmbedder struct {
	length int
}

func newTextEmbedder(nodeID string, length int) (Embedder, error) {
	if length <= 0 {
		return nil, dag.NewConfigurationError(nodeID, "text embedding requires a positive length, got %d", length)
	}
	return &textEmbedder{length: length}, nil
}

func (e *textEmbedder) Length() int {
	return e.length
}

func (e *textEmbedder) Embed(value any, _ dag.ExecutionContext) (vector.Vector, error) {
	text, ok := asString(value)
	if !ok {
		return nil, &ValueTypeError{Want: "string text", Got: value}
	}

	out := make(vector.Vector, e.length)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.length))
		// The high bit decides sign so frequent tokens don't all pile
		// up positive.
		if sum&(1<<63) != 0 {
			out[bucket] -= 1
		} else {
			out[bucket] += 1
		}
	}
	return out.Normalize(), nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
