// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors for source configuration.
var (
	// ErrNilSink is returned when a source is registered without a sink.
	ErrNilSink = errors.New("source has no sink")

	// ErrEmptyPath is returned when a source has no backing file path.
	ErrEmptyPath = errors.New("source path must not be empty")

	// ErrMissingWidths is returned when a fixed-width source declares no
	// column widths.
	ErrMissingWidths = errors.New("fixed-width source requires column widths")

	// ErrWidthNameMismatch is returned when fixed-width widths and field
	// names disagree in count.
	ErrWidthNameMismatch = errors.New("fixed-width widths and field names must match in count")
)

// UnsupportedFormatError is returned when a source declares a format the
// loader has no reader for.
type UnsupportedFormatError struct {
	Format DataFormat
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported data format: %q", e.Format)
}
