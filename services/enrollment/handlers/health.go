// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
)

// Health handles GET /health. It exercises the record store with a
// count so a wedged database shows up as unhealthy rather than as a
// silent 200.
func Health(store *storage.RecordStore, cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := store.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "record store unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"records":        n,
			"catalog_source": cat.Source(),
		})
	}
}
