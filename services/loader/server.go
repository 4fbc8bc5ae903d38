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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the loader's HTTP surface on a gin router.
//
// Description:
//
//	POST /v1/loader/load       - start ingestion for every registered
//	                             source; responds with the task ids.
//	GET  /v1/loader/tasks/:id  - poll one task's status.
//	GET  /health               - liveness probe.
//	GET  /metrics              - prometheus scrape endpoint.
func RegisterRoutes(r *gin.Engine, l *Loader) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"sources": l.SourceCount(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1/loader")
	v1.POST("/load", func(c *gin.Context) {
		// Tasks outlive the request; the request context would cancel
		// them as soon as the response is written.
		ids := l.Load(context.Background())
		c.JSON(http.StatusAccepted, gin.H{"tasks": ids})
	})
	v1.GET("/tasks/:id", func(c *gin.Context) {
		info := l.GetStatus(c.Param("id"))
		code := http.StatusOK
		if info.Status == StatusUnknown {
			code = http.StatusNotFound
		}
		c.JSON(code, info)
	})
}
