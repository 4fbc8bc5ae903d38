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
	"log/slog"

	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/storage"
)

// Options configures runtime construction.
type Options struct {
	// Logger receives evaluation events. If nil, slog.Default() is used.
	Logger *slog.Logger

	// MaxParallel limits concurrent per-record evaluations within one
	// batch (0 = unlimited). Output order is unaffected.
	MaxParallel int
}

// Runtime holds the OnlineNode wrappers for one validated graph, sharing
// a single storage manager. Built once per execution session.
type Runtime struct {
	nodes map[string]*OnlineNode
}

// BuildRuntime wraps every node of a validated graph.
//
// Description:
//
//	Wrapping happens parent-first so each OnlineNode receives its fully
//	built parent wrappers. Any arity or configuration violation aborts
//	the whole build; no partially wired runtime is returned.
//
// Inputs:
//
//	g - The validated static graph. Must not be nil.
//	store - The shared storage manager. Must not be nil.
//	opts - Runtime options.
//
// Outputs:
//
//	*Runtime - The wired runtime.
//	error - ConfigurationError on the first invalid node.
func BuildRuntime(g *dag.Graph, store storage.Manager, opts Options) (*Runtime, error) {
	if g == nil {
		return nil, ErrNilNode
	}
	if store == nil {
		return nil, ErrNilStorage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	built := make(map[string]*OnlineNode, g.NodeCount())

	var wrap func(id string) (*OnlineNode, error)
	wrap = func(id string) (*OnlineNode, error) {
		if node, ok := built[id]; ok {
			return node, nil
		}

		static, ok := g.Node(id)
		if !ok {
			return nil, dag.NewConfigurationError(id, "%v", dag.ErrUnknownParent)
		}

		parents := make([]*OnlineNode, 0, static.ParentCount())
		for _, parentID := range static.Parents() {
			parent, err := wrap(parentID)
			if err != nil {
				return nil, err
			}
			parents = append(parents, parent)
		}

		node, err := NewOnlineNode(static, parents, store, logger)
		if err != nil {
			return nil, err
		}
		node.maxParallel = opts.MaxParallel
		built[id] = node
		return node, nil
	}

	for _, id := range g.NodeIDs() {
		if _, err := wrap(id); err != nil {
			return nil, err
		}
	}

	return &Runtime{nodes: built}, nil
}

// Node returns the runtime wrapper for a node id.
func (r *Runtime) Node(id string) (*OnlineNode, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// NodeCount returns the number of wrapped nodes.
func (r *Runtime) NodeCount() int {
	return len(r.nodes)
}
