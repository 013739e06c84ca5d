// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
)

type nopAI struct{}

func (nopAI) ExtractRecord(context.Context, []byte, string) (datatypes.AutofillResult, error) {
	return datatypes.AutofillResult{}, nil
}

func (nopAI) Transcribe(context.Context, []byte, string) (string, error) {
	return "", nil
}

func newRouter(t *testing.T, token string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewRecordStore(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	SetupRoutes(router, Deps{
		Store:               store,
		Catalog:             catalog.Default(),
		Extractor:           nopAI{},
		Transcriber:         nopAI{},
		APIToken:            token,
		AIRequestsPerSecond: rate.Limit(100),
		AIBurst:             100,
	})
	return router
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	router := newRouter(t, "secret")

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestV1RoutesRequireAuth(t *testing.T) {
	router := newRouter(t, "secret")

	paths := []string{
		"/v1/records",
		"/v1/records/export",
		"/v1/catalog/partners",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer secret")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRecordRoutesAreWired(t *testing.T) {
	router := newRouter(t, "")

	// Unknown record id resolves through the route tree to the handler.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Export is matched as a static segment, not swallowed by :id.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
