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
	"errors"
	"fmt"
)

// Sentinel errors for runtime construction.
var (
	// ErrNilNode is returned when a runtime wrapper is built without a
	// static node.
	ErrNilNode = errors.New("static node must not be nil")

	// ErrNilStorage is returned when a runtime wrapper is built without
	// a storage manager.
	ErrNilStorage = errors.New("storage manager must not be nil")

	// ErrNilContext is returned when evaluation is invoked with a nil
	// Go context.
	ErrNilContext = errors.New("context must not be nil")
)

// MissingStoredResultError is returned when a parentless node is queried
// outside a default pass and the backing store holds no value for the
// record. The engine never fabricates a value in that situation.
type MissingStoredResultError struct {
	NodeID   string
	SchemaID string
}

func (e *MissingStoredResultError) Error() string {
	return fmt.Sprintf("node %s: no stored result for schema %s", e.NodeID, e.SchemaID)
}

// TypeMismatchError is returned when a parent's main value does not match
// the shape the child's transformation expects.
type TypeMismatchError struct {
	NodeID   string
	ParentID string
	SchemaID string
	Reason   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("node %s: value from parent %s for schema %s: %s",
		e.NodeID, e.ParentID, e.SchemaID, e.Reason)
}
