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

// Graph is a validated, immutable collection of nodes. Structural
// validity (acyclic, all parent references resolvable) is guaranteed at
// build time; evaluation never re-checks it.
type Graph struct {
	nodes map[string]*Node
}

// Node returns a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// NodeIDs returns all node ids in unspecified order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Builder constructs a Graph with validation.
//
// Description:
//
//	Builder accumulates nodes and validates on Build that every node
//	kind is known, every parent id resolves, and the parent graph is
//	acyclic. Any violation is a build-time fatal error; no Graph is
//	produced.
//
// Thread Safety:
//
//	Builder is NOT safe for concurrent use. Build the graph in a single
//	goroutine.
type Builder struct {
	nodes  map[string]*Node
	errors []error
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[string]*Node)}
}

// AddNode adds a node, recording an error on duplicate ids or unknown
// kinds. Returns the builder for chaining.
func (b *Builder) AddNode(node *Node) *Builder {
	if node == nil {
		b.errors = append(b.errors, ErrNilNode)
		return b
	}
	if !node.Kind().Valid() {
		b.errors = append(b.errors, NewConfigurationError(node.ID(), "%v: %q", ErrUnknownKind, node.Kind()))
		return b
	}
	if _, exists := b.nodes[node.ID()]; exists {
		b.errors = append(b.errors, NewConfigurationError(node.ID(), "%v", ErrDuplicateNode))
		return b
	}
	b.nodes[node.ID()] = node
	return b
}

// Build validates and constructs the Graph.
//
// Outputs:
//
//	*Graph - The validated graph.
//	error - Non-nil if any node is invalid, a parent is dangling, or a
//	        cycle exists.
func (b *Builder) Build() (*Graph, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	if len(b.nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	for _, node := range b.nodes {
		for _, parent := range node.parents {
			if _, ok := b.nodes[parent]; !ok {
				return nil, NewConfigurationError(node.ID(), "%v: %q", ErrUnknownParent, parent)
			}
		}
	}

	if err := b.detectCycles(); err != nil {
		return nil, err
	}

	return &Graph{nodes: b.nodes}, nil
}

// detectCycles walks parent edges depth-first, tracking the recursion
// stack to surface the offending path.
func (b *Builder) detectCycles() error {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	path := make([]string, 0, len(b.nodes))

	var dfs func(id string) error
	dfs = func(id string) error {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, parent := range b.nodes[id].parents {
			if !visited[parent] {
				if err := dfs(parent); err != nil {
					return err
				}
			} else if onStack[parent] {
				start := 0
				for i, p := range path {
					if p == parent {
						start = i
						break
					}
				}
				return &CycleError{Path: append(append([]string(nil), path[start:]...), parent)}
			}
		}

		path = path[:len(path)-1]
		onStack[id] = false
		return nil
	}

	for id := range b.nodes {
		if !visited[id] {
			if err := dfs(id); err != nil {
				return err
			}
		}
	}
	return nil
}
