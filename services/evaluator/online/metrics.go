// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package online

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("superlinked.online")
	meter  = otel.Meter("superlinked.online")
)

var (
	metricsOnce  sync.Once
	batchLatency metric.Float64Histogram
	evaluations  metric.Int64Counter
	storageMiss  metric.Int64Counter
)

// initMetrics lazily initializes instruments. Failures degrade
// observability but never block evaluation.
func initMetrics(logger *slog.Logger) {
	metricsOnce.Do(func() {
		var initErrors []string

		var err error
		batchLatency, err = meter.Float64Histogram("online_batch_duration_seconds",
			metric.WithDescription("Time spent evaluating one batch at one node"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "batch_latency: "+err.Error())
		}

		evaluations, err = meter.Int64Counter("online_evaluations_total",
			metric.WithDescription("Number of per-record evaluations"),
		)
		if err != nil {
			initErrors = append(initErrors, "evaluations: "+err.Error())
		}

		storageMiss, err = meter.Int64Counter("online_storage_misses_total",
			metric.WithDescription("Number of storage lookups with no stored result"),
		)
		if err != nil {
			initErrors = append(initErrors, "storage_miss: "+err.Error())
		}

		if len(initErrors) > 0 && logger != nil {
			logger.Error("failed to initialize some evaluation metrics (observability degraded)",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}
