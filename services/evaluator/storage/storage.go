// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage defines the keyed persistence boundary consumed by
// parentless nodes, plus the BadgerDB-backed implementation used in
// production and an instrumented in-memory implementation for tests.
//
// # Key contract
//
// Keys are a stable composite of the evaluation scope, the node identity
// and the record identity, rendered as
//
//	v1|{origin}|{version}|{nodeID}|{schemaID}
//
// with empty scope segments kept in place so the layout never shifts.
// The contract is versioned by the leading "v1" and must not change
// within a session: the ingestion side and the evaluation side only meet
// through byte-equal keys.
package storage

import (
	"context"
	"strings"

	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// Key identifies one stored vector.
type Key struct {
	Origin   string
	Version  string
	NodeID   string
	SchemaID string
}

// String renders the stable key form described in the package comment.
func (k Key) String() string {
	return strings.Join([]string{"v1", k.Origin, k.Version, k.NodeID, k.SchemaID}, "|")
}

// Manager is the read boundary the evaluation engine consumes. The store
// is opaque and externally populated; the engine never writes through it.
//
// Thread Safety: implementations must support concurrent reads.
type Manager interface {
	// Load returns the vector stored under key. The second return is
	// false when no value exists; that is not an error.
	Load(ctx context.Context, key Key) (vector.Vector, bool, error)
}

// Writer is the write boundary used by the ingestion collaborator to
// persist pre-computed vectors for source nodes. The evaluation engine
// never calls it.
type Writer interface {
	Store(ctx context.Context, key Key, vec vector.Vector) error
}
