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
)

// ListPartners handles GET /v1/catalog/partners.
func ListPartners(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"partners": cat.Partners()})
	}
}

// ListProducts handles GET /v1/catalog/partners/:partner/products.
func ListProducts(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		partner := c.Param("partner")
		products, err := cat.Products(partner)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"partner": partner, "products": products})
	}
}

// ListPremiums handles
// GET /v1/catalog/partners/:partner/products/:product/premiums.
func ListPremiums(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		partner := c.Param("partner")
		product := c.Param("product")
		premiums, err := cat.Premiums(partner, product)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"partner":  partner,
			"product":  product,
			"premiums": premiums,
		})
	}
}

// ResolveRequest is the POST /v1/catalog/resolve payload.
type ResolveRequest struct {
	Partner string `json:"partner"`
	Product string `json:"product"`
	Premium string `json:"premium"`
}

// ResolvePlan handles POST /v1/catalog/resolve. It returns the derived
// tenure and CSE name for a (partner, product, premium) triple, which is
// what the form shows in its read-only fields before submission.
func ResolvePlan(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Partner == "" || req.Product == "" || req.Premium == "" {
			c.JSON(http.StatusBadRequest,
				gin.H{"error": "partner, product, and premium are required"})
			return
		}
		detail, err := cat.Resolve(req.Partner, req.Product, req.Premium)
		if err != nil {
			c.JSON(catalogStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tenure":   detail.Tenure,
			"cse_name": detail.CSEName,
		})
	}
}
