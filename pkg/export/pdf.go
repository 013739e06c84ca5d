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
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// pdfColumns is the column subset printed in the PDF report. The full 25
// columns do not fit a printable page, so the report keeps the fields an
// operator scans for when reviewing a day's entries; CSV and XLSX remain
// the lossless formats.
var pdfColumns = []struct {
	header string
	width  float64
	value  func(r *datatypes.PolicyRecord) string
}{
	{"Policy Number", 32, func(r *datatypes.PolicyRecord) string { return r.PolicyNumber }},
	{"Customer Name", 52, func(r *datatypes.PolicyRecord) string { return r.CustomerName }},
	{"Mobile", 30, func(r *datatypes.PolicyRecord) string { return r.MobileNumber }},
	{"Partner", 42, func(r *datatypes.PolicyRecord) string { return r.Partner }},
	{"Product", 42, func(r *datatypes.PolicyRecord) string { return r.Product }},
	{"Premium", 22, func(r *datatypes.PolicyRecord) string { return r.PremiumAmount }},
	{"Tenure", 22, func(r *datatypes.PolicyRecord) string { return r.Tenure }},
	{"CSE", 35, func(r *datatypes.PolicyRecord) string { return r.CSEName }},
}

// PDFExporter writes records as a landscape A4 tabular report.
type PDFExporter struct{}

// NewPDFExporter returns the PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Format returns FormatPDF.
func (e *PDFExporter) Format() Format {
	return FormatPDF
}

// Write serializes records to w as a PDF report. The header row repeats
// on every page.
func (e *PDFExporter) Write(w io.Writer, records []datatypes.PolicyRecord) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Policy Enrollments", false)
	pdf.SetAutoPageBreak(true, 15)

	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "Policy Enrollments", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})

	pdf.AddPage()
	for i := range records {
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, col.value(&records[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.Ln(3)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d record(s)", len(records)), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
