// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{"products", "user_events", "recency.1d", "node-7", "A"}
	for _, name := range valid {
		t.Run("valid_"+name, func(t *testing.T) {
			assert.NoError(t, ValidateName(name))
		})
	}

	invalid := map[string]string{
		"empty":          "",
		"pipe":           "events|v1",
		"leading_dot":    ".hidden",
		"space":          "two words",
		"slash":          "a/b",
		"too_long":       strings.Repeat("x", 65),
		"newline":        "a\nb",
		"unicode_symbol": "café",
	}
	for label, name := range invalid {
		t.Run("invalid_"+label, func(t *testing.T) {
			assert.Error(t, ValidateName(name))
		})
	}
}

func TestValidateDataPath(t *testing.T) {
	base := t.TempDir()

	t.Run("relative path resolves under base", func(t *testing.T) {
		got, err := ValidateDataPath(base, "sub/data.csv")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "sub", "data.csv"), got)
	})

	t.Run("absolute path inside base is accepted", func(t *testing.T) {
		inside := filepath.Join(base, "data.csv")
		got, err := ValidateDataPath(base, inside)
		require.NoError(t, err)
		assert.Equal(t, inside, got)
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		_, err := ValidateDataPath(base, "../outside.csv")
		assert.Error(t, err)

		_, err = ValidateDataPath(base, "sub/../../outside.csv")
		assert.Error(t, err)
	})

	t.Run("absolute path outside base is rejected", func(t *testing.T) {
		_, err := ValidateDataPath(base, "/etc/passwd")
		assert.Error(t, err)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := ValidateDataPath(base, "")
		assert.Error(t, err)
	})
}
