// Package report renders processed announcements into a paginated PDF.
package report

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/finvarta/annbrief/pkg/ledger"
)

// Generate writes a PDF report for the given records at path. An empty
// record slice still produces a valid (single-page) document; callers
// normally skip rendering instead.
func Generate(path, title string, records []ledger.Record) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	var successful, failed []ledger.Record
	for _, r := range records {
		if r.Failed() {
			failed = append(failed, r)
		} else {
			successful = append(successful, r)
		}
	}

	// Cover page with run statistics.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated on %s", time.Now().Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Announcements: %d", len(records)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Summarized: %d", len(successful)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Failed: %d", len(failed)), "", 1, "L", false, 0, "")

	for _, r := range successful {
		writeRecord(pdf, tr, r)
	}

	if len(failed) > 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, "Failed Documents", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		for _, r := range failed {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, tr(r.Company), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(r.Summary), "", "L", false)
			pdf.Ln(3)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

func writeRecord(pdf *fpdf.Fpdf, tr func(string) string, r ledger.Record) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 15)
	pdf.MultiCell(0, 8, tr(r.Company), "", "L", false)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, tr(r.CompanyURL), "", "L", false)
	pdf.MultiCell(0, 5, tr(r.PDFURL), "", "L", false)
	meta := fmt.Sprintf("Model: %s    Extracted text: %d chars", r.ModelUsed, r.TextLength)
	if r.Language != "" {
		meta += "    Language: " + r.Language
	}
	pdf.MultiCell(0, 5, tr(meta), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5.5, tr(r.Summary), "", "L", false)
}
