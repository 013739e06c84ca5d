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
	"encoding/csv"
	"fmt"
	"io"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// CSVExporter writes records as RFC 4180 CSV with a header row.
type CSVExporter struct{}

// NewCSVExporter returns the CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format returns FormatCSV.
func (e *CSVExporter) Format() Format {
	return FormatCSV
}

// Write serializes records to w as CSV.
func (e *CSVExporter) Write(w io.Writer, records []datatypes.PolicyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(datatypes.FieldNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Fields()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
