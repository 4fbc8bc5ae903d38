// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package online

import (
	"fmt"

	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// EvaluationResult carries one computed value for one input record: a
// main value (a vector, or a raw scalar for upstream scalar nodes) plus
// optional named auxiliary values for kinds that emit more than one
// artifact per record.
//
// Results are created fresh per evaluation call and discarded once
// consumed; they are never cached by the engine.
type EvaluationResult struct {
	Main  any
	Named map[string]any
}

func newResult(main any) EvaluationResult {
	return EvaluationResult{Main: main}
}

// Vector returns the main value as a vector.
//
// Outputs:
//
//	vector.Vector - The main vector.
//	error - Non-nil when the main value is not a vector.
func (r EvaluationResult) Vector() (vector.Vector, error) {
	vec, ok := r.Main.(vector.Vector)
	if !ok {
		return nil, fmt.Errorf("main value is %T, not a vector", r.Main)
	}
	return vec, nil
}
