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
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/observability"
	"github.com/AleutianAI/PolicyDesk/services/extract"
)

// maxImageBytes caps autofill uploads. Scanned policy documents and
// phone photos sit well under this.
const maxImageBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Autofill handles POST /v1/autofill. The request carries one document
// image as multipart field "image"; the response is a best-effort
// partial record the form can prefill. Nothing is stored here, the
// operator reviews and submits through the normal create path.
func Autofill(extractor extract.Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'image' is required"})
			return
		}
		defer file.Close()

		if header.Size > maxImageBytes {
			c.JSON(http.StatusRequestEntityTooLarge,
				gin.H{"error": "image exceeds the 10MB limit"})
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if !allowedImageTypes[mimeType] {
			c.JSON(http.StatusUnsupportedMediaType,
				gin.H{"error": "image must be JPEG, PNG, or WebP"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil {
			slog.Error("failed to read autofill upload", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}

		start := time.Now()
		result, err := extractor.ExtractRecord(c.Request.Context(), data, mimeType)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			slog.Error("document extraction failed",
				"filename", header.Filename, "error", err)
			observability.RecordAutofill(elapsed, false)
			c.JSON(http.StatusBadGateway, gin.H{"error": "document extraction failed"})
			return
		}

		slog.Info("document extraction succeeded",
			"filename", header.Filename, "seconds", elapsed)
		observability.RecordAutofill(elapsed, true)
		c.JSON(http.StatusOK, result)
	}
}
