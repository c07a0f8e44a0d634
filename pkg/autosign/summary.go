package autosign

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type SummaryRow struct {
	Name     string
	Email    string
	Role     string
	Status   string
	SignedAt *time.Time
}

type Summary struct {
	Title         string
	DocumentID    string
	PageCount     int
	FieldCount    int
	FullyExecuted bool
	Rows          []SummaryRow
	GeneratedAt   time.Time
}

var summaryColumns = []struct {
	title string
	width float64
}{
	{"Signer", 45},
	{"Email", 55},
	{"Role", 25},
	{"Status", 20},
	{"Signed at (UTC)", 45},
}

// WriteSummary renders a one page signing status sheet for a document.
// It is informational only and carries no signature of its own.
func WriteSummary(w io.Writer, s Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(s.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, s.Title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	status := "Awaiting signatures"
	if s.FullyExecuted {
		status = "Fully executed"
	}

	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Document: %s", s.DocumentID),
		fmt.Sprintf("Pages: %d    Fields: %d", s.PageCount, s.FieldCount),
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("Generated: %s", s.GeneratedAt.UTC().Format(time.RFC3339)),
	} {
		pdf.CellFormat(0, 6, line, "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for _, col := range summaryColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range s.Rows {
		signedAt := "-"
		if row.SignedAt != nil {
			signedAt = row.SignedAt.UTC().Format("2006-01-02 15:04:05")
		}
		cells := []string{row.Name, row.Email, row.Role, row.Status, signedAt}
		for i, col := range summaryColumns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render summary pdf: %w", err)
	}
	return nil
}
