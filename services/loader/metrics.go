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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superlinked",
		Subsystem: "loader",
		Name:      "records_ingested_total",
		Help:      "Records delivered to sinks, by source.",
	}, []string{"source"})

	tasksFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superlinked",
		Subsystem: "loader",
		Name:      "tasks_finished_total",
		Help:      "Ingestion tasks reaching a terminal state, by status.",
	}, []string{"status"})
)

func recordIngested(source string, n int) {
	recordsIngested.WithLabelValues(source).Add(float64(n))
}

func recordTask(status TaskStatus) {
	tasksFinished.WithLabelValues(string(status)).Inc()
}
