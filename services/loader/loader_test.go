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
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink captures everything Put delivers.
type memorySink struct {
	mu      sync.Mutex
	records []Record
	fail    error
}

func (s *memorySink) Put(ctx context.Context, records []Record) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *memorySink) all() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func csvSource(t *testing.T, name, content string, sink Sink) *Source {
	return &Source{
		Config: SourceConfig{
			Name:   name,
			Path:   writeFile(t, name+".csv", content),
			Format: FormatCSV,
		},
		Sink: sink,
	}
}

func waitDone(t *testing.T, l *Loader, id string) TaskInfo {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	info, err := l.Wait(ctx, id)
	require.NoError(t, err)
	return info
}

func TestLoader_CSVEndToEnd(t *testing.T) {
	sink := &memorySink{}
	l := New(Options{})
	require.NoError(t, l.RegisterSources(csvSource(t, "numbers", "a,b\n1,2\n3,4\n5,6\n", sink)))

	ids := l.Load(context.Background())
	require.Len(t, ids, 1)

	info := waitDone(t, l, ids[0])
	assert.Equal(t, StatusSucceeded, info.Status)
	assert.Equal(t, "numbers", info.Source)

	got := sink.all()
	require.Len(t, got, 3)
	assert.Equal(t, Record{"a": int64(1), "b": int64(2)}, got[0])
	assert.Equal(t, Record{"a": int64(3), "b": int64(4)}, got[1])
	assert.Equal(t, Record{"a": int64(5), "b": int64(6)}, got[2])
}

func TestLoader_FailureIsolation(t *testing.T) {
	good := &memorySink{}
	bad := &memorySink{}
	l := New(Options{})

	require.NoError(t, l.RegisterSources(
		csvSource(t, "good", "a\n1\n", good),
		&Source{
			Config: SourceConfig{Name: "bad", Path: "/nonexistent/path.csv", Format: FormatCSV},
			Sink:   bad,
		},
	))

	ids := l.Load(context.Background())
	require.Len(t, ids, 2)

	goodInfo := waitDone(t, l, ids[0])
	badInfo := waitDone(t, l, ids[1])

	assert.Equal(t, StatusSucceeded, goodInfo.Status)
	assert.Equal(t, StatusFailed, badInfo.Status)
	assert.NotEmpty(t, badInfo.Detail)
	assert.Len(t, good.all(), 1)
}

func TestLoader_SinkFailure(t *testing.T) {
	sink := &memorySink{fail: errors.New("downstream unavailable")}
	l := New(Options{})
	require.NoError(t, l.RegisterSources(csvSource(t, "s", "a\n1\n", sink)))

	ids := l.Load(context.Background())
	info := waitDone(t, l, ids[0])
	assert.Equal(t, StatusFailed, info.Status)
	assert.Contains(t, info.Detail, "downstream unavailable")
}

func TestLoader_DuplicateRegistration(t *testing.T) {
	sink := &memorySink{}
	l := New(Options{})

	src := csvSource(t, "dup", "a\n1\n", sink)
	same := &Source{Config: src.Config, Sink: sink}
	require.NoError(t, l.RegisterSources(src, same))
	assert.Equal(t, 1, l.SourceCount())

	ids := l.Load(context.Background())
	require.Len(t, ids, 1)

	info := waitDone(t, l, ids[0])
	assert.Equal(t, StatusSucceeded, info.Status)
	assert.Len(t, sink.all(), 1)
}

func TestLoader_DistinctConfigsBothRegistered(t *testing.T) {
	sink := &memorySink{}
	l := New(Options{})
	a := csvSource(t, "a", "x\n1\n", sink)
	b := csvSource(t, "b", "x\n2\n", sink)
	require.NoError(t, l.RegisterSources(a, b))
	assert.Equal(t, 2, l.SourceCount())
}

func TestLoader_RegisterValidation(t *testing.T) {
	l := New(Options{})

	t.Run("nil sink", func(t *testing.T) {
		err := l.RegisterSources(&Source{Config: SourceConfig{Name: "s", Path: "p", Format: FormatCSV}})
		assert.ErrorIs(t, err, ErrNilSink)
	})

	t.Run("empty path", func(t *testing.T) {
		err := l.RegisterSources(&Source{Config: SourceConfig{Name: "s", Format: FormatCSV}, Sink: &memorySink{}})
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("fwf without widths", func(t *testing.T) {
		err := l.RegisterSources(&Source{
			Config: SourceConfig{Name: "s", Path: "p", Format: FormatFWF},
			Sink:   &memorySink{},
		})
		assert.ErrorIs(t, err, ErrMissingWidths)
	})
}

func TestLoader_GetStatus(t *testing.T) {
	l := New(Options{})

	t.Run("unknown id", func(t *testing.T) {
		info := l.GetStatus("no-such-task")
		assert.Equal(t, StatusUnknown, info.Status)
	})

	t.Run("terminal state retained after completion", func(t *testing.T) {
		sink := &memorySink{}
		require.NoError(t, l.RegisterSources(csvSource(t, "s", "a\n1\n", sink)))
		ids := l.Load(context.Background())
		waitDone(t, l, ids[0])

		info := l.GetStatus(ids[0])
		assert.Equal(t, StatusSucceeded, info.Status)
	})
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	sink := &memorySink{}
	l := New(Options{})
	src := &Source{
		Config: SourceConfig{
			Name:   "s",
			Path:   writeFile(t, "s.avro", "x"),
			Format: DataFormat("avro"),
		},
		Sink: sink,
	}
	require.NoError(t, l.RegisterSources(src))

	ids := l.Load(context.Background())
	info := waitDone(t, l, ids[0])
	assert.Equal(t, StatusFailed, info.Status)
	assert.Contains(t, info.Detail, "avro")
}

func TestLoader_Chunking(t *testing.T) {
	// Count Put calls to verify batching honors the configured size.
	var calls int
	var mu sync.Mutex
	sink := putFunc(func(ctx context.Context, records []Record) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	content := "a\n"
	for i := 0; i < 5; i++ {
		content += "1\n"
	}
	src := &Source{
		Config: SourceConfig{
			Name:    "s",
			Path:    writeFile(t, "s.csv", content),
			Format:  FormatCSV,
			Options: ReadOptions{ChunkSize: 2},
		},
		Sink: sink,
	}

	l := New(Options{})
	require.NoError(t, l.RegisterSources(src))
	ids := l.Load(context.Background())
	info := waitDone(t, l, ids[0])

	require.Equal(t, StatusSucceeded, info.Status)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls) // 2 + 2 + 1
}

type putFunc func(ctx context.Context, records []Record) error

func (f putFunc) Put(ctx context.Context, records []Record) error { return f(ctx, records) }
