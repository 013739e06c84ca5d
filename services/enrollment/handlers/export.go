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
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/PolicyDesk/pkg/export"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/observability"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
)

// ExportRecords handles GET /v1/records/export?format=csv|xlsx|pdf.
// The q/sort/order parameters narrow and order the export the same way
// they do the table view; pagination never applies, so the file covers
// every matching record.
func ExportRecords(store *storage.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := c.DefaultQuery("format", "csv")
		exp, err := export.For(format)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var q datatypes.Query
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}

		stored, err := store.List(c.Request.Context())
		if err != nil {
			slog.Error("failed to list records for export", "format", format, "error", err)
			observability.RecordExport(format, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
			return
		}
		records := q.Select(stored)

		var buf bytes.Buffer
		if err := exp.Write(&buf, records); err != nil {
			slog.Error("failed to render export", "format", format, "error", err)
			observability.RecordExport(format, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
			return
		}

		filename := fmt.Sprintf("enrollments-%s.%s",
			time.Now().Format("2006-01-02"), exp.Format())
		slog.Info("exported enrollment records",
			"format", format, "count", len(records), "bytes", buf.Len())
		observability.RecordExport(format, true)

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, exp.Format().ContentType(), buf.Bytes())
	}
}
