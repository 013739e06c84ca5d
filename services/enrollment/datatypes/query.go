// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"sort"
	"strconv"
	"strings"
)

// Page sizes offered by the table view.
const (
	PageSizeSmall  = 10
	PageSizeMedium = 20
	PageSizeLarge  = 50
)

// Query describes one table-view request: free-text search, a single
// sort key, and fixed-size pagination.
type Query struct {
	// Search is a case-insensitive substring matched against every field.
	// Empty means no filtering.
	Search string `form:"q"`

	// SortKey is a record JSON field name (e.g. "customer_name").
	// Unknown or empty keys fall back to created_at.
	SortKey string `form:"sort"`

	// Order is "asc" or "desc". Anything else means desc.
	Order string `form:"order"`

	// Page is 1-based. Values below 1 clamp to 1; values past the end
	// clamp to the last page.
	Page int `form:"page"`

	// PageSize must be one of 10, 20, 50. Anything else becomes 10.
	PageSize int `form:"page_size"`
}

// QueryResult is one page of records plus the metadata the table needs
// to render pagination controls.
type QueryResult struct {
	Records    []PolicyRecord `json:"records"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// sortKeys maps sortable JSON field names to value extractors. Premium
// sorts numerically when both values parse; everything else sorts as a
// case-folded string.
var sortKeys = map[string]func(r *PolicyRecord) string{
	"policy_number":    func(r *PolicyRecord) string { return r.PolicyNumber },
	"customer_name":    func(r *PolicyRecord) string { return r.CustomerName },
	"mobile_number":    func(r *PolicyRecord) string { return r.MobileNumber },
	"city":             func(r *PolicyRecord) string { return r.City },
	"state":            func(r *PolicyRecord) string { return r.State },
	"partner":          func(r *PolicyRecord) string { return r.Partner },
	"product":          func(r *PolicyRecord) string { return r.Product },
	"premium_amount":   func(r *PolicyRecord) string { return r.PremiumAmount },
	"tenure":           func(r *PolicyRecord) string { return r.Tenure },
	"cse_name":         func(r *PolicyRecord) string { return r.CSEName },
	"branch_code":      func(r *PolicyRecord) string { return r.BranchCode },
	"sourcing_channel": func(r *PolicyRecord) string { return r.SourcingChannel },
	"enrollment_date":  func(r *PolicyRecord) string { return r.EnrollmentDate },
}

// Matches reports whether the record contains the search term in any
// business field, case-insensitively. An empty term matches everything.
func (r *PolicyRecord) Matches(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, field := range r.Fields() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Select runs search and sort over records and returns the whole
// matching list, unpaginated. Exports use this so a filtered download
// covers every matching record, not one page. The input slice is not
// modified.
func (q Query) Select(records []PolicyRecord) []PolicyRecord {
	filtered := make([]PolicyRecord, 0, len(records))
	for i := range records {
		if records[i].Matches(q.Search) {
			filtered = append(filtered, records[i])
		}
	}
	q.sortRecords(filtered)
	return filtered
}

// Apply runs the full search -> sort -> paginate pipeline over records
// and returns one page. The input slice is not modified.
func (q Query) Apply(records []PolicyRecord) QueryResult {
	filtered := q.Select(records)

	pageSize := q.PageSize
	switch pageSize {
	case PageSizeSmall, PageSizeMedium, PageSizeLarge:
	default:
		pageSize = PageSizeSmall
	}

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return QueryResult{
		Records:    filtered[start:end],
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// sortRecords orders records in place by the query's sort key. The list
// arrives from storage in created_at descending order, which doubles as
// the fallback for unknown keys.
func (q Query) sortRecords(records []PolicyRecord) {
	extract, ok := sortKeys[q.SortKey]
	ascending := q.Order == "asc"

	if !ok {
		// created_at (or unknown key): storage order is already desc.
		if q.SortKey == "created_at" && ascending {
			reverse(records)
		}
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := extract(&records[i]), extract(&records[j])
		less := compareField(a, b)
		if ascending {
			return less
		}
		return compareField(b, a)
	})
}

// compareField orders two field values: numerically when both parse as
// numbers (premium amounts), case-folded lexically otherwise.
func compareField(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func reverse(records []PolicyRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}
