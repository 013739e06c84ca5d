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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/pkg/ux"
)

func runCatalogShow(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	partners, err := client.partners()
	if err != nil {
		ux.Fail(fmt.Sprintf("Failed to load the catalog: %v", err))
		os.Exit(1)
	}

	ux.Title("Plan Catalog")
	for _, partner := range partners {
		fmt.Println(ux.Styles.Highlight.Render(partner))
		products, err := client.products(partner)
		if err != nil {
			ux.Fail(fmt.Sprintf("Failed to load products for %s: %v", partner, err))
			os.Exit(1)
		}
		for _, product := range products {
			premiums, err := client.premiums(partner, product)
			if err != nil {
				ux.Fail(fmt.Sprintf("Failed to load premiums for %s: %v", product, err))
				os.Exit(1)
			}
			fmt.Printf("  %s\n", ux.Styles.Subtitle.Render(product))
			for _, premium := range premiums {
				tenure, cseName, err := client.resolve(partner, product, premium)
				if err != nil {
					ux.Fail(fmt.Sprintf("Failed to resolve %s/%s/%s: %v",
						partner, product, premium, err))
					os.Exit(1)
				}
				fmt.Printf("    ₹%-8s %-10s CSE: %s\n", premium, tenure, cseName)
			}
		}
	}
}

// runCatalogCheck validates a catalog file locally, without touching the
// service. Operators run this before pointing POLICYDESK_CATALOG_PATH at
// a new file.
func runCatalogCheck(cmd *cobra.Command, args []string) {
	cat, err := catalog.Load(args[0])
	if err != nil {
		ux.Fail(fmt.Sprintf("Catalog is invalid: %v", err))
		os.Exit(1)
	}

	partners := cat.Partners()
	plans := 0
	for _, partner := range partners {
		products, _ := cat.Products(partner)
		for _, product := range products {
			premiums, _ := cat.Premiums(partner, product)
			plans += len(premiums)
		}
	}
	ux.Success(fmt.Sprintf("Catalog is valid: %d partners, %d plans", len(partners), plans))
}
