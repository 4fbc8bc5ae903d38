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
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parquetTestRow struct {
	Name  string  `parquet:"name"`
	Qty   int64   `parquet:"qty"`
	Score float64 `parquet:"score"`
}

func writeParquet(t *testing.T, rowGroups ...[]parquetTestRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := parquet.NewGenericWriter[parquetTestRow](f)
	for i, rows := range rowGroups {
		_, err = w.Write(rows)
		require.NoError(t, err)
		if i < len(rowGroups)-1 {
			require.NoError(t, w.Flush())
		}
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadParquet(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := writeParquet(t, []parquetTestRow{
			{Name: "widget", Qty: 3, Score: 9.5},
			{Name: "gadget", Qty: 7, Score: 12},
		})
		got := readAll(t, &Source{Config: SourceConfig{
			Name:   "s",
			Path:   path,
			Format: FormatParquet,
		}})
		require.Len(t, got, 2)
		assert.Equal(t, Record{"name": "widget", "qty": int64(3), "score": 9.5}, got[0])
		assert.Equal(t, Record{"name": "gadget", "qty": int64(7), "score": float64(12)}, got[1])
	})

	t.Run("multiple row groups preserve order", func(t *testing.T) {
		path := writeParquet(t,
			[]parquetTestRow{{Name: "a", Qty: 1}, {Name: "b", Qty: 2}},
			[]parquetTestRow{{Name: "c", Qty: 3}},
		)
		got := readAll(t, &Source{Config: SourceConfig{
			Name:   "s",
			Path:   path,
			Format: FormatParquet,
		}})
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0]["name"])
		assert.Equal(t, "b", got[1]["name"])
		assert.Equal(t, "c", got[2]["name"])
		assert.Equal(t, int64(3), got[2]["qty"])
	})

	t.Run("missing file", func(t *testing.T) {
		src := &Source{
			Config: SourceConfig{
				Name:   "s",
				Path:   filepath.Join(t.TempDir(), "absent.parquet"),
				Format: FormatParquet,
			},
			Sink: &memorySink{},
		}
		require.Error(t, readSource(context.Background(), src))
	})
}
