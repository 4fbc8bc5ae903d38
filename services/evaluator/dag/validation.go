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

import "fmt"

// ParentValidationType is the arity policy a node kind declares for its
// parents. It is checked exactly once, when the runtime wrapper is built,
// and never re-checked during evaluation.
type ParentValidationType struct {
	min int
	max int // -1 means unbounded
}

// Exactly requires exactly n parents.
func Exactly(n int) ParentValidationType {
	return ParentValidationType{min: n, max: n}
}

// AtMost allows up to n parents.
func AtMost(n int) ParentValidationType {
	return ParentValidationType{min: 0, max: n}
}

// AtLeast requires n or more parents.
func AtLeast(n int) ParentValidationType {
	return ParentValidationType{min: n, max: -1}
}

// Any places no constraint on parent count.
func Any() ParentValidationType {
	return ParentValidationType{min: 0, max: -1}
}

// Allows reports whether the given parent count satisfies the policy.
func (p ParentValidationType) Allows(count int) bool {
	if count < p.min {
		return false
	}
	if p.max >= 0 && count > p.max {
		return false
	}
	return true
}

// String describes the policy for error messages.
func (p ParentValidationType) String() string {
	switch {
	case p.max < 0 && p.min == 0:
		return "any number of parents"
	case p.max < 0:
		return fmt.Sprintf("at least %d parent(s)", p.min)
	case p.min == p.max:
		return fmt.Sprintf("exactly %d parent(s)", p.min)
	case p.min == 0:
		return fmt.Sprintf("at most %d parent(s)", p.max)
	default:
		return fmt.Sprintf("between %d and %d parents", p.min, p.max)
	}
}
