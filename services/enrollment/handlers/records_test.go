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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
)

// newTestStore returns an in-memory record store torn down with the test.
func newTestStore(t *testing.T) *storage.RecordStore {
	t.Helper()
	store, err := storage.NewRecordStore(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRecordsRouter(t *testing.T) (*gin.Engine, *storage.RecordStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)
	cat := catalog.Default()

	r := gin.New()
	r.POST("/v1/records", CreateRecord(store, cat))
	r.GET("/v1/records", QueryRecords(store))
	r.POST("/v1/records/import", ImportRecords(store, cat))
	r.GET("/v1/records/:id", GetRecord(store))
	r.PUT("/v1/records/:id", UpdateRecord(store, cat))
	r.DELETE("/v1/records/:id", DeleteRecord(store))
	return r, store
}

// validRecord builds a payload that resolves against the default catalog.
func validRecord(policy string) datatypes.PolicyRecord {
	return datatypes.PolicyRecord{
		PolicyNumber:  policy,
		CustomerName:  "Asha Verma",
		MobileNumber:  "9876543210",
		Partner:       "Sterling Finance",
		Product:       "Suraksha Shield",
		PremiumAmount: "299",
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRecord(t *testing.T) {
	t.Run("creates and derives plan fields", func(t *testing.T) {
		r, _ := newRecordsRouter(t)
		w := postJSON(t, r, "/v1/records", validRecord("POL-1001"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var got datatypes.PolicyRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.NotEmpty(t, got.ID)
		assert.NotZero(t, got.CreatedAt)
		assert.Equal(t, got.CreatedAt, got.UpdatedAt)
		assert.NotEmpty(t, got.Tenure)
		assert.NotEmpty(t, got.CSEName)
	})

	t.Run("rejects invalid mobile", func(t *testing.T) {
		r, _ := newRecordsRouter(t)
		rec := validRecord("POL-1002")
		rec.MobileNumber = "12345"
		w := postJSON(t, r, "/v1/records", rec)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects premium not offered for product", func(t *testing.T) {
		r, _ := newRecordsRouter(t)
		rec := validRecord("POL-1003")
		rec.PremiumAmount = "123456"
		w := postJSON(t, r, "/v1/records", rec)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects unknown partner", func(t *testing.T) {
		r, _ := newRecordsRouter(t)
		rec := validRecord("POL-1004")
		rec.Partner = "No Such Bank"
		w := postJSON(t, r, "/v1/records", rec)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		r, _ := newRecordsRouter(t)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/records",
			bytes.NewReader([]byte("{not json")))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRecord(t *testing.T) {
	r, _ := newRecordsRouter(t)
	w := postJSON(t, r, "/v1/records", validRecord("POL-2001"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created datatypes.PolicyRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/"+created.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var got datatypes.PolicyRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "POL-2001", got.PolicyNumber)
	})

	t.Run("missing id is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateRecord(t *testing.T) {
	r, _ := newRecordsRouter(t)
	w := postJSON(t, r, "/v1/records", validRecord("POL-3001"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created datatypes.PolicyRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("updates fields and re-derives plan", func(t *testing.T) {
		upd := validRecord("POL-3001")
		upd.CustomerName = "Asha V. Sharma"
		upd.PremiumAmount = "999"
		data, err := json.Marshal(upd)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/records/"+created.ID,
			bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got datatypes.PolicyRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.CreatedAt, got.CreatedAt)
		assert.Equal(t, "Asha V. Sharma", got.CustomerName)
		// Tenure tracks the new premium, not the one used at create time.
		assert.NotEqual(t, created.Tenure, got.Tenure)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		data, _ := json.Marshal(validRecord("POL-3002"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/records/nope", bytes.NewReader(data))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteRecord(t *testing.T) {
	r, _ := newRecordsRouter(t)
	w := postJSON(t, r, "/v1/records", validRecord("POL-4001"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created datatypes.PolicyRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/records/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/records/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryRecords(t *testing.T) {
	r, _ := newRecordsRouter(t)
	for i := 0; i < 12; i++ {
		rec := validRecord(fmt.Sprintf("POL-5%03d", i))
		rec.CustomerName = fmt.Sprintf("Customer %02d", i)
		w := postJSON(t, r, "/v1/records", rec)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("default page size is 10", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var res datatypes.QueryResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 12, res.TotalCount)
		assert.Len(t, res.Records, 10)
		assert.Equal(t, 2, res.TotalPages)
	})

	t.Run("search narrows the list", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records?q=customer+03", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var res datatypes.QueryResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Equal(t, 1, res.TotalCount)
		assert.Equal(t, "Customer 03", res.Records[0].CustomerName)
	})

	t.Run("sort by customer name ascending", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/v1/records?sort=customer_name&order=asc&page_size=20", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var res datatypes.QueryResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Records, 12)
		assert.Equal(t, "Customer 00", res.Records[0].CustomerName)
		assert.Equal(t, "Customer 11", res.Records[11].CustomerName)
	})
}

func TestImportRecords(t *testing.T) {
	r, store := newRecordsRouter(t)

	// Seed one record that the import must wipe.
	w := postJSON(t, r, "/v1/records", validRecord("POL-OLD"))
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("replaces the whole list", func(t *testing.T) {
		req := datatypes.ImportRequest{Records: []datatypes.PolicyRecord{
			validRecord("POL-6001"),
			validRecord("POL-6002"),
		}}
		w := postJSON(t, r, "/v1/records/import", req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		records, err := store.List(t.Context())
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, rec := range records {
			assert.NotEmpty(t, rec.ID)
			assert.NotEmpty(t, rec.Tenure)
			assert.NotEqual(t, "POL-OLD", rec.PolicyNumber)
		}
	})

	t.Run("one bad record fails the batch", func(t *testing.T) {
		bad := validRecord("POL-6003")
		bad.Partner = "No Such Bank"
		req := datatypes.ImportRequest{Records: []datatypes.PolicyRecord{
			validRecord("POL-6004"), bad,
		}}
		w := postJSON(t, r, "/v1/records/import", req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		// The previous import survives untouched.
		records, err := store.List(t.Context())
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}
