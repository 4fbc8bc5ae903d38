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

import "time"

// ExecutionContext carries the per-call parameters of one evaluation:
// whether this is a default-vector pass, and the scope identifiers that
// are combined with a record's identity to key storage lookups.
//
// An ExecutionContext is created fresh per call and treated as read-only
// by every node it reaches. The default-pass flag is batch-scoped: it
// applies uniformly to every record in the batch it is passed with.
type ExecutionContext struct {
	// DefaultPass short-circuits evaluation to each node's configured
	// default vector. No parents are consulted and no storage is read.
	DefaultPass bool

	// Origin scopes storage keys; typically the ingesting application or
	// dataset identifier. Empty is a valid scope.
	Origin string

	// Version scopes storage keys to a data version. Empty is a valid
	// scope.
	Version string

	// Now is the evaluation reference time in Unix seconds, consumed by
	// time-dependent kinds. Zero means time.Now at context creation.
	Now int64
}

// NewExecutionContext creates a context for a normal evaluation pass.
func NewExecutionContext(origin, version string) ExecutionContext {
	return ExecutionContext{
		Origin:  origin,
		Version: version,
		Now:     time.Now().Unix(),
	}
}

// NewDefaultPassContext creates a context that signals the default-vector
// pass.
func NewDefaultPassContext(origin, version string) ExecutionContext {
	ctx := NewExecutionContext(origin, version)
	ctx.DefaultPass = true
	return ctx
}

// IsDefaultPass reports whether this call must return configured default
// vectors instead of computed ones.
func (c ExecutionContext) IsDefaultPass() bool {
	return c.DefaultPass
}

// ReferenceTime returns the evaluation reference time.
func (c ExecutionContext) ReferenceTime() time.Time {
	if c.Now == 0 {
		return time.Now()
	}
	return time.Unix(c.Now, 0)
}
