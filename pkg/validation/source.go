// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up in
// storage keys, file paths, or HTTP responses. Using these validators
// prevents key collisions and path traversal.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// namePattern matches valid source and node identifiers.
// Allows: letters, digits, underscores, dots, hyphens.
// Max length: 64 characters.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateName validates a source or node identifier before it is used
// in storage keys and log fields.
//
// Valid names:
//   - 1-64 characters
//   - Letters and digits
//   - Dots (.), underscores (_), hyphens (-) after the first character
//
// The pipe character in particular is rejected because storage keys use
// it as a segment separator.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name: %q (must be 1-64 alphanumeric chars, dots, underscores, or hyphens)", name)
	}

	return nil
}

// ValidateDataPath validates a user-supplied file path against a base
// directory, preventing traversal outside it.
//
// Returns the cleaned absolute path if it resolves under base.
//
// Example:
//
//	path, err := validation.ValidateDataPath(cfg.DataDir, userPath)
//	if err != nil {
//	    return fmt.Errorf("invalid source path: %w", err)
//	}
//	// Safe to open
func ValidateDataPath(base, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(absBase, resolved)
	}
	resolved = filepath.Clean(resolved)

	rel, err := filepath.Rel(absBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes data directory %q", path, base)
	}

	return resolved, nil
}
