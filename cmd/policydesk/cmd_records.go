// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/PolicyDesk/pkg/ux"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

func runListRecords(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	result, err := client.queryRecords(datatypes.Query{
		Search:   searchTerm,
		SortKey:  sortKey,
		Order:    sortOrder,
		Page:     pageNumber,
		PageSize: pageSize,
	})
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to list records: %v", err))
		os.Exit(1)
	}

	headers := []string{"ID", "Policy", "Customer", "Mobile", "Partner", "Product", "Premium", "Tenure"}
	rows := make([][]string, 0, len(result.Records))
	for _, r := range result.Records {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id, r.PolicyNumber, r.CustomerName, r.MobileNumber,
			r.Partner, r.Product, r.PremiumAmount, r.Tenure,
		})
	}
	ux.Title("Enrollment Records")
	fmt.Print(ux.RenderTable(headers, rows))
	ux.Muted(fmt.Sprintf("Page %d of %d (%d records total)",
		result.Page, result.TotalPages, result.TotalCount))
}

// runAddRecord walks the operator through the same cascade the web form
// uses: pick a partner, then a product, then a premium, with tenure and
// CSE name shown before the record is submitted.
func runAddRecord(cmd *cobra.Command, args []string) {
	client := newAPIClient()

	partners, err := client.partners()
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to load partners: %v", err))
		os.Exit(1)
	}

	var rec datatypes.PolicyRecord
	identity := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Policy Number").Value(&rec.PolicyNumber),
			huh.NewInput().Title("Customer Name").Value(&rec.CustomerName),
			huh.NewInput().Title("Mobile Number").Value(&rec.MobileNumber),
			huh.NewInput().Title("Email (optional)").Value(&rec.Email),
			huh.NewInput().Title("City (optional)").Value(&rec.City),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Partner").
				Options(huh.NewOptions(partners...)...).
				Value(&rec.Partner),
		),
	)
	if err := identity.Run(); err != nil {
		ux.Fail(fmt.Sprintf("Form aborted: %v", err))
		os.Exit(1)
	}

	products, err := client.products(rec.Partner)
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to load products: %v", err))
		os.Exit(1)
	}
	productForm := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Product").
			Options(huh.NewOptions(products...)...).
			Value(&rec.Product),
	))
	if err := productForm.Run(); err != nil {
		ux.Fail(fmt.Sprintf("Form aborted: %v", err))
		os.Exit(1)
	}

	premiums, err := client.premiums(rec.Partner, rec.Product)
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to load premiums: %v", err))
		os.Exit(1)
	}
	premiumForm := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Premium Amount").
			Options(huh.NewOptions(premiums...)...).
			Value(&rec.PremiumAmount),
	))
	if err := premiumForm.Run(); err != nil {
		ux.Fail(fmt.Sprintf("Form aborted: %v", err))
		os.Exit(1)
	}

	tenure, cseName, err := client.resolve(rec.Partner, rec.Product, rec.PremiumAmount)
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to resolve the plan: %v", err))
		os.Exit(1)
	}
	ux.Muted(fmt.Sprintf("Tenure: %s   CSE: %s", tenure, cseName))

	confirmed := true
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Submit this record?").Value(&confirmed),
	))
	if err := confirm.Run(); err != nil || !confirmed {
		ux.Warn("Record discarded.")
		return
	}

	created, err := client.createRecord(rec)
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to create the record: %v", err))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("Created record %s for %s", created.ID, created.CustomerName))
}

func runDeleteRecord(cmd *cobra.Command, args []string) {
	id := args[0]
	if !forceDelete {
		confirmed := false
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete record %s? This cannot be undone.", id)).
				Value(&confirmed),
		))
		if err := confirm.Run(); err != nil || !confirmed {
			ux.Warn("Delete cancelled.")
			return
		}
	}

	if err := newAPIClient().deleteRecord(id); err != nil {
		ux.Fail(fmt.Sprintf("Failed to delete record: %v", err))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("Deleted record %s", id))
}

func runImportRecords(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to read %s: %v", args[0], err))
		os.Exit(1)
	}

	// Accept either a bare array or an {"records": [...]} wrapper.
	var records []datatypes.PolicyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapper datatypes.ImportRequest
		if err := json.Unmarshal(data, &wrapper); err != nil {
			ux.Fail(fmt.Sprintf("Failed to parse %s: %v", args[0], err))
			os.Exit(1)
		}
		records = wrapper.Records
	}

	ux.Warn(fmt.Sprintf("This replaces ALL stored records with the %d records from %s.",
		len(records), args[0]))
	confirmed := false
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Continue with the import?").Value(&confirmed),
	))
	if err := confirm.Run(); err != nil || !confirmed {
		ux.Warn("Import cancelled.")
		return
	}

	imported, err := newAPIClient().importRecords(records)
	if err != nil {
		ux.Fail(fmt.Sprintf("Import failed: %v", err))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("Imported %d records", imported))
}
