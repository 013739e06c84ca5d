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
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/handlers"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/middleware"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
	"github.com/AleutianAI/PolicyDesk/services/extract"
)

// Deps bundles everything the route table wires into handlers.
type Deps struct {
	Store       *storage.RecordStore
	Catalog     *catalog.Catalog
	Extractor   extract.Extractor
	Transcriber extract.Transcriber

	// APIToken enables bearer auth on /v1 when non-empty.
	APIToken string

	// AIRequestsPerSecond throttles the autofill and dictation routes,
	// which fan out to a paid model API.
	AIRequestsPerSecond rate.Limit
	AIBurst             int
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.Health(deps.Store, deps.Catalog))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.APIToken))
	{
		records := v1.Group("/records")
		{
			records.POST("", handlers.CreateRecord(deps.Store, deps.Catalog))
			records.GET("", handlers.QueryRecords(deps.Store))
			records.POST("/import", handlers.ImportRecords(deps.Store, deps.Catalog))
			records.GET("/export", handlers.ExportRecords(deps.Store))
			records.GET("/:id", handlers.GetRecord(deps.Store))
			records.PUT("/:id", handlers.UpdateRecord(deps.Store, deps.Catalog))
			records.DELETE("/:id", handlers.DeleteRecord(deps.Store))
		}

		cat := v1.Group("/catalog")
		{
			cat.GET("/partners", handlers.ListPartners(deps.Catalog))
			cat.GET("/partners/:partner/products", handlers.ListProducts(deps.Catalog))
			cat.GET("/partners/:partner/products/:product/premiums",
				handlers.ListPremiums(deps.Catalog))
			cat.POST("/resolve", handlers.ResolvePlan(deps.Catalog))
		}

		ai := v1.Group("")
		ai.Use(middleware.AIRateLimit(deps.AIRequestsPerSecond, deps.AIBurst))
		{
			ai.POST("/autofill", handlers.Autofill(deps.Extractor))
			ai.POST("/dictate", handlers.Dictate(deps.Transcriber))
			ai.GET("/dictate/ws", handlers.DictateStream(deps.Transcriber))
		}
	}
}
