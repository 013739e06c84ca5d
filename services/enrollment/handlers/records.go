// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP handlers for the enrollment
// service. Every handler is a constructor that closes over its
// dependencies and returns a gin.HandlerFunc, so the route table stays a
// flat list of wiring.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/observability"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
)

// resolvePlan fills Tenure and CSEName from the catalog. A cascade
// mismatch (premium that does not exist for the selected product) is a
// client error, not a derivation fallback.
func resolvePlan(cat *catalog.Catalog, rec *datatypes.PolicyRecord) error {
	detail, err := cat.Resolve(rec.Partner, rec.Product, rec.PremiumAmount)
	if err != nil {
		return err
	}
	rec.Tenure = detail.Tenure
	rec.CSEName = detail.CSEName
	return nil
}

func catalogStatus(err error) int {
	if errors.Is(err, catalog.ErrUnknownPartner) ||
		errors.Is(err, catalog.ErrUnknownProduct) ||
		errors.Is(err, catalog.ErrUnknownPremium) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// updateStoredGauge refreshes the stored-records gauge after a write.
// Gauge drift on a count failure is tolerable, so errors only log.
func updateStoredGauge(c *gin.Context, store *storage.RecordStore) {
	n, err := store.Count(c.Request.Context())
	if err != nil {
		slog.Warn("failed to refresh stored record count", "error", err)
		return
	}
	observability.SetRecordsStored(n)
}

// CreateRecord handles POST /v1/records. It validates the payload,
// derives tenure and CSE name from the plan catalog, assigns the server
// fields, and persists the record.
func CreateRecord(store *storage.RecordStore, cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec datatypes.PolicyRecord
		if err := c.ShouldBindJSON(&rec); err != nil {
			slog.Warn("failed to bind create record request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := rec.Validate(); err != nil {
			observability.RecordOp("create", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := resolvePlan(cat, &rec); err != nil {
			slog.Warn("plan resolution failed on create",
				"partner", rec.Partner, "product", rec.Product,
				"premium", rec.PremiumAmount, "error", err)
			observability.RecordOp("create", false)
			c.JSON(catalogStatus(err), gin.H{"error": err.Error()})
			return
		}

		now := time.Now().UnixMilli()
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
		rec.UpdatedAt = now

		if err := store.Put(c.Request.Context(), rec); err != nil {
			slog.Error("failed to store record", "id", rec.ID, "error", err)
			observability.RecordOp("create", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store record"})
			return
		}

		slog.Info("created enrollment record", "id", rec.ID, "policy", rec.PolicyNumber)
		observability.RecordOp("create", true)
		updateStoredGauge(c, store)
		c.JSON(http.StatusCreated, rec)
	}
}

// QueryRecords handles GET /v1/records. Search, sort, and pagination all
// run in memory over the full list; see datatypes.Query for parameter
// semantics.
func QueryRecords(store *storage.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q datatypes.Query
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		records, err := store.List(c.Request.Context())
		if err != nil {
			slog.Error("failed to list records", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
			return
		}
		c.JSON(http.StatusOK, q.Apply(records))
	}
}

// GetRecord handles GET /v1/records/:id.
func GetRecord(store *storage.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rec, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load record", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load record"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// UpdateRecord handles PUT /v1/records/:id. The stored record's ID and
// CreatedAt survive the update; everything else comes from the payload,
// with tenure and CSE name re-derived from the catalog.
func UpdateRecord(store *storage.RecordStore, cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		existing, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load record for update", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load record"})
			return
		}

		var rec datatypes.PolicyRecord
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := rec.Validate(); err != nil {
			observability.RecordOp("update", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := resolvePlan(cat, &rec); err != nil {
			slog.Warn("plan resolution failed on update",
				"id", id, "partner", rec.Partner, "product", rec.Product,
				"premium", rec.PremiumAmount, "error", err)
			observability.RecordOp("update", false)
			c.JSON(catalogStatus(err), gin.H{"error": err.Error()})
			return
		}

		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = time.Now().UnixMilli()

		if err := store.Put(c.Request.Context(), rec); err != nil {
			slog.Error("failed to update record", "id", id, "error", err)
			observability.RecordOp("update", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update record"})
			return
		}

		slog.Info("updated enrollment record", "id", id)
		observability.RecordOp("update", true)
		c.JSON(http.StatusOK, rec)
	}
}

// DeleteRecord handles DELETE /v1/records/:id.
func DeleteRecord(store *storage.RecordStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := store.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			slog.Error("failed to delete record", "id", id, "error", err)
			observability.RecordOp("delete", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete record"})
			return
		}

		slog.Info("deleted enrollment record", "id", id)
		observability.RecordOp("delete", true)
		updateStoredGauge(c, store)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_id": id})
	}
}

// ImportRecords handles POST /v1/records/import. The payload replaces
// the entire stored list, matching the save model of clients that keep
// the full list locally and sync it wholesale. Records without an ID get
// one; tenure and CSE name are re-derived for every record.
func ImportRecords(store *storage.RecordStore, cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			observability.RecordOp("import", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now().UnixMilli()
		for i := range req.Records {
			rec := &req.Records[i]
			if err := resolvePlan(cat, rec); err != nil {
				observability.RecordOp("import", false)
				c.JSON(catalogStatus(err), gin.H{
					"error":  err.Error(),
					"record": i,
				})
				return
			}
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			if rec.CreatedAt == 0 {
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now
		}

		if err := store.ReplaceAll(c.Request.Context(), req.Records); err != nil {
			slog.Error("failed to import records", "count", len(req.Records), "error", err)
			observability.RecordOp("import", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import records"})
			return
		}

		slog.Info("imported enrollment records", "count", len(req.Records))
		observability.RecordOp("import", true)
		observability.SetRecordsStored(len(req.Records))
		c.JSON(http.StatusOK, gin.H{"status": "success", "imported": len(req.Records)})
	}
}
