// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the enrollment service.
//
// # Authentication
//
// The service runs single-user on an operator's machine, so auth is a
// single shared bearer token. When no token is configured every request
// is accepted, which keeps a local deployment zero-config; setting
// POLICYDESK_API_TOKEN turns enforcement on for exposed deployments.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware enforces the shared bearer token.
//
// # Description
//
// Extracts the token from "Authorization: Bearer <token>" and compares it
// against the configured token in constant time. An empty configured
// token disables enforcement entirely.
//
// # Inputs
//
//   - token: The expected bearer token. Empty disables auth.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware aborting unauthorized requests with 401.
func AuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || presented == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "missing bearer token"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "invalid bearer token"})
			return
		}
		c.Next()
	}
}
