// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package export serializes enrollment records to downloadable files.
//
// Three formats are supported: CSV, XLSX, and a tabular PDF report. All
// three share the column order defined by datatypes.FieldNames, so a row
// in any export lines up with the same row in the others.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// Format identifies one export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Exporter writes a record list to one output format.
type Exporter interface {
	// Write serializes records to w. Records are written in the order
	// given; callers apply search/sort first.
	Write(w io.Writer, records []datatypes.PolicyRecord) error

	// Format returns the format this exporter produces.
	Format() Format
}

// ContentType returns the MIME type served for a format's download.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// For maps a format name to its exporter. The name is matched
// case-insensitively.
func For(name string) (Exporter, error) {
	switch Format(strings.ToLower(name)) {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want csv, xlsx, or pdf)", name)
	}
}
