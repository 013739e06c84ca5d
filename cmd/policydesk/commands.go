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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	searchTerm   string
	sortKey      string
	sortOrder    string
	pageNumber   int
	pageSize     int
	exportFormat string
	uploadTarget string
	outputDir    string
	forceDelete  bool

	rootCmd = &cobra.Command{
		Use:   "policydesk",
		Short: "A cli to manage PolicyDesk insurance enrollment records",
		Long: `PolicyDesk is a data-entry backend for insurance enrollment.
				This cli talks to a running enrollment service to list, add,
				import, and export policy records.`,
	}

	// --- Records ---
	recordsCmd = &cobra.Command{
		Use:   "records",
		Short: "Work with enrollment records",
	}
	listRecordsCmd = &cobra.Command{
		Use:   "list",
		Short: "List enrollment records in a table",
		Run:   runListRecords, // Defined in cmd_records.go
	}
	addRecordCmd = &cobra.Command{
		Use:   "add",
		Short: "Add an enrollment record through an interactive form",
		Run:   runAddRecord, // Defined in cmd_records.go
	}
	deleteRecordCmd = &cobra.Command{
		Use:   "delete [record_id]",
		Short: "Delete one enrollment record",
		Args:  cobra.ExactArgs(1),
		Run:   runDeleteRecord, // Defined in cmd_records.go
	}
	importRecordsCmd = &cobra.Command{
		Use:   "import [json_file]",
		Short: "Replace all stored records with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		Run:   runImportRecords, // Defined in cmd_records.go
	}

	// --- Export ---
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export all records to csv, xlsx, or pdf files",
		Run:   runExport, // Defined in cmd_export.go
	}

	// --- Catalog ---
	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the partner / product / premium catalog",
	}
	catalogShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the full catalog cascade from the service",
		Run:   runCatalogShow, // Defined in cmd_catalog.go
	}
	catalogCheckCmd = &cobra.Command{
		Use:   "check [yaml_file]",
		Short: "Validate a catalog YAML file before deploying it",
		Args:  cobra.ExactArgs(1),
		Run:   runCatalogCheck, // Defined in cmd_catalog.go
	}
)

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(listRecordsCmd)
	listRecordsCmd.Flags().StringVarP(&searchTerm, "search", "q", "", "Filter records by a case-insensitive substring")
	listRecordsCmd.Flags().StringVar(&sortKey, "sort", "", "Sort key (e.g. customer_name, premium_amount)")
	listRecordsCmd.Flags().StringVar(&sortOrder, "order", "desc", "Sort order: asc or desc")
	listRecordsCmd.Flags().IntVar(&pageNumber, "page", 1, "Page number (1-based)")
	listRecordsCmd.Flags().IntVar(&pageSize, "page-size", 20, "Records per page: 10, 20, or 50")
	recordsCmd.AddCommand(addRecordCmd)
	recordsCmd.AddCommand(deleteRecordCmd)
	deleteRecordCmd.Flags().BoolVar(&forceDelete, "force", false, "Skip the confirmation prompt")
	recordsCmd.AddCommand(importRecordsCmd)

	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv, xlsx, pdf, or all")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory to write export files into")
	exportCmd.Flags().StringVar(&uploadTarget, "upload", "", "Also upload exports to a gs://bucket/prefix target")

	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
}
