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
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

func TestExportRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)
	rec := validRecord("POL-EXP-1")
	rec.ID = "id-1"
	require.NoError(t, store.Put(t.Context(), rec))

	r := gin.New()
	r.GET("/v1/records/export", ExportRecords(store))

	t.Run("csv carries header and row", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=csv", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

		rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, datatypes.FieldNames(), rows[0])
		assert.Equal(t, "POL-EXP-1", rows[1][0])
	})

	t.Run("format defaults to csv", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/export", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	})

	t.Run("xlsx content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=xlsx", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	})

	t.Run("pdf magic bytes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=pdf", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	})

	t.Run("unknown format is 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=docx", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExportRecordsFiltered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)

	first := validRecord("POL-FLT-1")
	first.ID = "id-flt-1"
	first.CustomerName = "Kiran Alpha"
	require.NoError(t, store.Put(t.Context(), first))

	second := validRecord("POL-FLT-2")
	second.ID = "id-flt-2"
	second.CustomerName = "Meera Beta"
	require.NoError(t, store.Put(t.Context(), second))

	r := gin.New()
	r.GET("/v1/records/export", ExportRecords(store))

	t.Run("search narrows the file", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=csv&q=alpha", nil))
		require.Equal(t, http.StatusOK, w.Code)

		rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "POL-FLT-1", rows[1][0])
		assert.NotContains(t, w.Body.String(), "Meera Beta")
	})

	t.Run("sort orders the rows", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=csv&sort=customer_name&order=asc", nil))
		require.Equal(t, http.StatusOK, w.Code)

		rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "POL-FLT-1", rows[1][0])
		assert.Equal(t, "POL-FLT-2", rows[2][0])
	})

	t.Run("bad page size still exports", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records/export?format=csv&page_size=7", nil))
		require.Equal(t, http.StatusOK, w.Code)
		rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}
