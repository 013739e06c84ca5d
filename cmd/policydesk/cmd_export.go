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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/PolicyDesk/pkg/export"
	"github.com/AleutianAI/PolicyDesk/pkg/ux"
)

// runExport downloads one or all export formats concurrently and writes
// them into the output directory. With --upload, each file also goes to
// the gs:// target.
func runExport(cmd *cobra.Command, args []string) {
	formats := []string{exportFormat}
	if exportFormat == "all" {
		formats = []string{"csv", "xlsx", "pdf"}
	}
	for _, f := range formats {
		if _, err := export.For(f); err != nil {
			ux.Fail(err.Error())
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		ux.Fail(fmt.Sprintf("Failed to create output directory: %v", err))
		os.Exit(1)
	}

	var uploader *export.GCSUploader
	var prefix string
	if uploadTarget != "" {
		bucket, pfx, err := export.ParseGCSTarget(uploadTarget)
		if err != nil {
			ux.Fail(err.Error())
			os.Exit(1)
		}
		prefix = pfx
		uploader, err = export.NewGCSUploader(context.Background(), bucket, os.Getenv("POLICYDESK_GCS_KEY"))
		if err != nil {
			ux.Fail(fmt.Sprintf("Failed to set up the GCS uploader: %v", err))
			os.Exit(1)
		}
		defer uploader.Close()
	}

	client := newAPIClient()
	stamp := time.Now().Format("2006-01-02")

	g, ctx := errgroup.WithContext(context.Background())
	for _, format := range formats {
		g.Go(func() error {
			data, err := client.exportRecords(format)
			if err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}
			name := fmt.Sprintf("enrollments-%s.%s", stamp, format)
			path := filepath.Join(outputDir, name)
			if err := os.WriteFile(path, data, 0640); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			ux.Success(fmt.Sprintf("Wrote %s (%d bytes)", path, len(data)))

			if uploader != nil {
				object := name
				if prefix != "" {
					object = prefix + "/" + name
				}
				if err := uploader.UploadFile(ctx, path, object, export.Format(format)); err != nil {
					return fmt.Errorf("upload %s: %w", name, err)
				}
				ux.Success(fmt.Sprintf("Uploaded %s to %s", name, uploadTarget))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ux.Fail(fmt.Sprintf("Export failed: %v", err))
		os.Exit(1)
	}
}
