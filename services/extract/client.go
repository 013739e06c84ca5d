// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extract integrates the external generative-AI backends behind
// the autofill and dictation features.
//
// Both integrations are deliberately thin: one request, one response, no
// retries. A failed call surfaces as an error for the form to display.
package extract

import (
	"context"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// Extractor pulls enrollment fields out of a photographed document image.
type Extractor interface {
	// ExtractRecord sends one image (raw bytes plus its MIME type) to the
	// document-understanding backend and returns the best-effort partial
	// record. Fields the backend cannot read come back empty.
	ExtractRecord(ctx context.Context, image []byte, mimeType string) (datatypes.AutofillResult, error)
}

// Transcriber converts one dictated audio clip to text for a single form
// field.
type Transcriber interface {
	// Transcribe sends one audio clip (raw bytes plus a filename whose
	// extension identifies the container format) and returns the spoken
	// text.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
