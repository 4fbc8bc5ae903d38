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
	"errors"
	"fmt"
)

// Sentinel errors for graph construction.
var (
	// ErrNilNode is returned when a nil node is added to a builder.
	ErrNilNode = errors.New("node must not be nil")

	// ErrDuplicateNode is returned when two nodes share an id.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrUnknownParent is returned when a node references a parent id
	// that does not resolve.
	ErrUnknownParent = errors.New("parent id does not resolve")

	// ErrUnknownKind is returned when a node declares a kind outside the
	// closed set.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrEmptyGraph is returned when a builder holds no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

// CycleError reports a dependency cycle found during graph construction.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %v", e.Path)
}

// ConfigurationError is the fatal error raised before any evaluation when
// a runtime wrapper is built with a parent list that violates the node
// kind's arity policy, or with otherwise unusable configuration.
type ConfigurationError struct {
	NodeID string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("node %s: invalid configuration: %s", e.NodeID, e.Detail)
}

// NewConfigurationError builds a ConfigurationError for a node.
func NewConfigurationError(nodeID, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{NodeID: nodeID, Detail: fmt.Sprintf(format, args...)}
}
