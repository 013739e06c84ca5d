// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSUploader copies export files to a Google Cloud Storage bucket.
// Used by the CLI to push a day's exports off the workstation.
type GCSUploader struct {
	storageClient *storage.Client
	BucketName    string
}

// ParseGCSTarget splits a gs://bucket/prefix URL into bucket and prefix.
func ParseGCSTarget(target string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(target, "gs://")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("invalid GCS target %q (expected gs://bucket[/prefix])", target)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid GCS target %q (empty bucket)", target)
	}
	return bucket, prefix, nil
}

// NewGCSUploader creates an uploader for the given bucket.
//
// If saKeyPath is non-empty it must point at a service account key file;
// otherwise application default credentials are used.
func NewGCSUploader(ctx context.Context, bucketName, saKeyPath string) (*GCSUploader, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", saKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}
	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSUploader{storageClient: storageClient, BucketName: bucketName}, nil
}

// Close releases the underlying client.
func (u *GCSUploader) Close() error {
	return u.storageClient.Close()
}

// UploadFile copies a local export file to the bucket under gcsPath,
// with the content type of the export format.
func (u *GCSUploader) UploadFile(ctx context.Context, localPath, gcsPath string, format Format) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open the local file %s: %w", localPath, err)
	}
	defer localFile.Close()

	obj := u.storageClient.Bucket(u.BucketName).Object(gcsPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = format.ContentType()
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, localFile); err != nil {
		return fmt.Errorf("failed to copy %s to GCS object %s: %w", localPath, gcsPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", gcsPath, err)
	}
	return nil
}
