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
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// TaskStatus is the lifecycle state of one source ingestion task.
type TaskStatus string

const (
	StatusUnknown   TaskStatus = "unknown"
	StatusRunning   TaskStatus = "running"
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
	StatusCancelled TaskStatus = "cancelled"
)

// TaskInfo is a poll-time snapshot of a task.
type TaskInfo struct {
	ID     string     `json:"id"`
	Source string     `json:"source"`
	Status TaskStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// task tracks one running source read. The terminal status and detail
// are written exactly once, before done closes, so a receive on done
// guarantees a stable snapshot without further locking.
type task struct {
	id     string
	source string

	mu     sync.Mutex
	status TaskStatus
	detail string

	done chan struct{}
}

func (t *task) snapshot() TaskInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TaskInfo{ID: t.id, Source: t.source, Status: t.status, Detail: t.detail}
}

func (t *task) finish(status TaskStatus, detail string) {
	t.mu.Lock()
	t.status = status
	t.detail = detail
	t.mu.Unlock()
	close(t.done)
}

// Options tune a Loader.
type Options struct {
	// Logger receives ingestion progress. Defaults to slog.Default.
	Logger *slog.Logger

	// MaxConcurrent bounds how many sources read at once. <=0 means 4.
	MaxConcurrent int64
}

// Loader owns the registered sources and their ingestion tasks.
//
// Description:
//
//	Sources are registered up front; Load spawns one background task per
//	registered source and returns immediately with the task ids. A task
//	error never crosses into Load's caller or into sibling tasks; it is
//	retained on the task for GetStatus.
//
// Thread Safety: all methods are safe for concurrent use.
type Loader struct {
	logger *slog.Logger
	sem    *semaphore.Weighted

	mu      sync.Mutex
	sources []*Source
	tasks   map[string]*task
}

// New constructs a Loader with no registered sources.
func New(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}
	return &Loader{
		logger: logger.With("component", "loader"),
		sem:    semaphore.NewWeighted(limit),
		tasks:  make(map[string]*task),
	}
}

// RegisterSources adds sources to the loader. A source whose config
// exactly equals an already registered one is skipped with a warning;
// an invalid source fails the whole call before anything is added.
func (l *Loader) RegisterSources(sources ...*Source) error {
	for _, src := range sources {
		if src == nil {
			return fmt.Errorf("register source: %w", ErrNilSink)
		}
		if err := src.Validate(); err != nil {
			return fmt.Errorf("register source %q: %w", src.Config.Name, err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, src := range sources {
		if l.findLocked(src.Config) != nil {
			l.logger.Warn("skipping duplicate source registration",
				"source", src.Config.Name, "path", src.Config.Path)
			continue
		}
		l.sources = append(l.sources, src)
	}
	return nil
}

func (l *Loader) findLocked(cfg SourceConfig) *Source {
	for _, s := range l.sources {
		if s.Config.Equal(cfg) {
			return s
		}
	}
	return nil
}

// SourceCount returns the number of registered sources.
func (l *Loader) SourceCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sources)
}

// Load starts one background ingestion task per registered source and
// returns the task ids in registration order. The returned ids are
// stable handles for GetStatus and Wait; source failures surface only
// there.
func (l *Loader) Load(ctx context.Context) []string {
	l.mu.Lock()
	sources := make([]*Source, len(l.sources))
	copy(sources, l.sources)
	l.mu.Unlock()

	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		t := &task{
			id:     uuid.NewString(),
			source: src.Config.Name,
			status: StatusRunning,
			done:   make(chan struct{}),
		}
		l.mu.Lock()
		l.tasks[t.id] = t
		l.mu.Unlock()
		ids = append(ids, t.id)

		go l.run(ctx, src, t)
	}
	return ids
}

func (l *Loader) run(ctx context.Context, src *Source, t *task) {
	log := l.logger.With("task", t.id, "source", src.Config.Name)

	if err := l.sem.Acquire(ctx, 1); err != nil {
		t.finish(StatusCancelled, err.Error())
		recordTask(StatusCancelled)
		log.Warn("ingestion cancelled before start", "error", err)
		return
	}
	defer l.sem.Release(1)

	log.Info("ingestion started",
		"path", src.Config.Path, "format", string(src.Config.Format))

	counted := &countingSink{inner: src.Sink, source: src.Config.Name}
	run := *src
	run.Sink = counted

	err := readSource(ctx, &run)
	switch {
	case err == nil:
		t.finish(StatusSucceeded, "")
		recordTask(StatusSucceeded)
		log.Info("ingestion finished", "records", counted.count)
	case ctx.Err() != nil:
		t.finish(StatusCancelled, ctx.Err().Error())
		recordTask(StatusCancelled)
		log.Warn("ingestion cancelled", "records", counted.count)
	default:
		t.finish(StatusFailed, err.Error())
		recordTask(StatusFailed)
		log.Error("ingestion failed", "error", err, "records", counted.count)
	}
}

// GetStatus reports the current state of a task. Unknown ids report
// StatusUnknown rather than an error so pollers can retry uniformly.
func (l *Loader) GetStatus(id string) TaskInfo {
	l.mu.Lock()
	t, ok := l.tasks[id]
	l.mu.Unlock()
	if !ok {
		return TaskInfo{ID: id, Status: StatusUnknown}
	}
	return t.snapshot()
}

// Wait blocks until the task reaches a terminal state or ctx expires.
func (l *Loader) Wait(ctx context.Context, id string) (TaskInfo, error) {
	l.mu.Lock()
	t, ok := l.tasks[id]
	l.mu.Unlock()
	if !ok {
		return TaskInfo{ID: id, Status: StatusUnknown}, nil
	}
	select {
	case <-t.done:
		return t.snapshot(), nil
	case <-ctx.Done():
		return t.snapshot(), ctx.Err()
	}
}

// countingSink wraps a sink to count delivered records for logs and
// metrics.
type countingSink struct {
	inner  Sink
	source string
	count  int
}

func (c *countingSink) Put(ctx context.Context, records []Record) error {
	if err := c.inner.Put(ctx, records); err != nil {
		return err
	}
	c.count += len(records)
	recordIngested(c.source, len(records))
	return nil
}
