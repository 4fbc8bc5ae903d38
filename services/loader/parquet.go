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
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// readParquet streams a parquet file row group by row group. Only flat
// schemas are supported; nested columns surface under their leaf name.
func readParquet(ctx context.Context, src *Source) error {
	f, err := os.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src.Config.Path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, fld := range fields {
		names[i] = fld.Name()
	}

	ch := newChunker(src)
	buf := make([]parquet.Row, src.Config.chunkSize())
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make(Record, len(names))
				for _, v := range row {
					col := int(v.Column())
					if col < 0 || col >= len(names) {
						continue
					}
					rec[names[col]] = parquetValue(v)
				}
				if addErr := ch.add(ctx, rec); addErr != nil {
					rows.Close()
					return addErr
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return fmt.Errorf("read rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("close row reader: %w", err)
		}
	}
	return ch.flush(ctx)
}

// parquetValue converts one parquet leaf value to the loader's record
// typing.
func parquetValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return v.String()
	default:
		return v.String()
	}
}
