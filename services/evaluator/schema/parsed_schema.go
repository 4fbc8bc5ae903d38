// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schema defines the parsed input record consumed by the evaluation
// engine. A batch is an ordered sequence of ParsedSchema; ordering is owned
// by the caller and preserved end to end.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ParsedSchema is one structured input record.
//
// Description:
//
//	Name identifies the logical schema the record belongs to (for example
//	"product"). ID is an optional caller-supplied identity; when empty,
//	identity is derived deterministically from the fields so the same
//	record always maps to the same storage key.
type ParsedSchema struct {
	Name   string
	ID     string
	Fields map[string]any
}

// New creates a ParsedSchema with an explicit identity.
func New(name, id string, fields map[string]any) ParsedSchema {
	return ParsedSchema{Name: name, ID: id, Fields: fields}
}

// Field returns the value of a named field.
//
// Outputs:
//
//	any - The field value, nil when absent.
//	bool - Whether the field exists.
func (s ParsedSchema) Field(name string) (any, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// Identity returns the stable identity used as a storage key component.
//
// Description:
//
//	When ID is set it is returned as-is, prefixed by the schema name.
//	Otherwise the identity is a SHA-256 digest over the sorted field
//	names and values, so it is independent of map iteration order and
//	repeatable across processes.
func (s ParsedSchema) Identity() string {
	if s.ID != "" {
		return s.Name + "/" + s.ID
	}

	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(s.Name)
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte(0)
		fmt.Fprintf(&b, "%v", s.Fields[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return s.Name + "/" + hex.EncodeToString(sum[:16])
}
