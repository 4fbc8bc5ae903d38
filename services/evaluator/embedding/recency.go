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
	"time"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// recencyEmbedder embeds an event timestamp against the context's
// reference time. Slot i carries a linear decay over Periods[i]: 1 for an
// event at the reference time, 0 once the event is older than the period.
// Events in the future are treated as age zero.
//
// The reference time comes from the ExecutionContext, so the same record
// evaluated under the same context always embeds identically.
type recencyEmbedder struct {
	periods []time.Duration
}

func newRecencyEmbedder(nodeID string, length int, cfg dag.EmbeddingConfig) (Embedder, error) {
	if len(cfg.Periods) == 0 {
		return nil, dag.NewConfigurationError(nodeID, "recency embedding requires at least one period")
	}
	for _, p := range cfg.Periods {
		if p <= 0 {
			return nil, dag.NewConfigurationError(nodeID, "recency periods must be positive, got %v", p)
		}
	}
	if length != len(cfg.Periods) {
		return nil, dag.NewConfigurationError(nodeID,
			"declared length %d does not match %d periods", length, len(cfg.Periods))
	}
	return &recencyEmbedder{periods: append([]time.Duration(nil), cfg.Periods...)}, nil
}

func (e *recencyEmbedder) Length() int {
	return len(e.periods)
}

func (e *recencyEmbedder) Embed(value any, ctx dag.ExecutionContext) (vector.Vector, error) {
	ts, ok := asTimestamp(value)
	if !ok {
		return nil, &ValueTypeError{Want: "unix timestamp or time.Time", Got: value}
	}

	age := ctx.ReferenceTime().Sub(ts)
	if age < 0 {
		age = 0
	}

	out := make(vector.Vector, len(e.periods))
	for i, period := range e.periods {
		score := 1 - float64(age)/float64(period)
		if score < 0 {
			score = 0
		}
		out[i] = score
	}
	return out, nil
}

func asTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case int64:
		return time.Unix(v, 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	}
	return time.Time{}, false
}
