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
	"context"
	"fmt"
	"time"

	"github.com/scritchley/orc"
)

// readORC streams an ORC file with all top-level columns selected.
func readORC(ctx context.Context, src *Source) error {
	r, err := orc.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer r.Close()

	names := r.Schema().Columns()
	cursor := r.Select(names...)

	ch := newChunker(src)
	for cursor.Stripes() {
		for cursor.Next() {
			row := cursor.Row()
			rec := make(Record, len(names))
			for i, name := range names {
				if i >= len(row) {
					break
				}
				rec[name] = orcValue(row[i])
			}
			if err := ch.add(ctx, rec); err != nil {
				return err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("read stripes: %w", err)
	}
	return ch.flush(ctx)
}

// orcValue narrows ORC cursor values to the loader's record typing.
func orcValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case float32:
		return float64(t)
	case float64:
		return t
	case orc.Double:
		return float64(t)
	case string:
		return t
	case bool:
		return t
	case time.Time:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
