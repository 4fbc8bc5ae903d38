// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging builds the structured loggers used across the
// evaluator and loader services.
//
// Output goes to stderr by default, following Unix conventions, with
// optional JSON file logging for machine processing:
//
//	logger, closeFn, err := logging.New(logging.Config{
//	    Level:   "info",
//	    Service: "evaluator",
//	    LogDir:  "~/.superlinked/logs",
//	})
//	if err != nil { ... }
//	defer closeFn()
//
// The returned logger is a plain *slog.Logger; every component in this
// repository takes one, so no wrapper type is needed.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config configures logger construction. The zero value yields an
// Info-level text logger on stderr.
type Config struct {
	// Level is the minimum severity: "debug", "info", "warn", "error".
	// Unrecognized values fall back to "info".
	Level string

	// Service is attached to every record as the "service" attribute.
	Service string

	// LogDir, when set, additionally writes JSON logs to
	// {LogDir}/{Service}_{YYYY-MM-DD}.log. Supports ~ expansion.
	LogDir string

	// JSON switches the stderr stream to JSON format.
	JSON bool

	// Quiet disables the stderr stream entirely.
	Quiet bool
}

// ParseLevel maps a level name to its slog.Level, defaulting to Info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New constructs a logger per config.
//
// Outputs:
//   - *slog.Logger: ready for use; never nil on nil error.
//   - func() error: closes the log file if one was opened. Callers
//     should defer it.
//   - error: file logging setup failure. stderr-only configs cannot
//     fail.
func New(cfg Config) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handlers []slog.Handler
	if !cfg.Quiet {
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	closeFn := func() error { return nil }
	if cfg.LogDir != "" {
		dir := expandPath(cfg.LogDir)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("create log dir %s: %w", dir, err)
		}
		service := cfg.Service
		if service == "" {
			service = "superlinked"
		}
		name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(dir, name),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		// File logs are always JSON, regardless of the stderr format.
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
		closeFn = func() error {
			if err := file.Sync(); err != nil {
				file.Close()
				return fmt.Errorf("sync log file: %w", err)
			}
			return file.Close()
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}
	return slog.New(handler), closeFn, nil
}

// Default returns an Info-level stderr logger.
func Default() *slog.Logger {
	logger, _, _ := New(Config{Service: "superlinked"})
	return logger
}

// multiHandler fans one record out to several handlers, enabling
// simultaneous stderr text and file JSON output.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
