// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// AIRateLimit throttles the autofill and dictation endpoints.
//
// The external AI backend is metered, so a runaway client (or a stuck
// retry loop in a front end) should be stopped at our edge rather than
// billed. One shared limiter is enough: the service is single-user.
//
// Requests beyond the burst are rejected immediately with 429 instead of
// queueing, matching the form's "try again" UX.
func AIRateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "too many AI requests, slow down"})
			return
		}
		c.Next()
	}
}
