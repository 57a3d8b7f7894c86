package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"reinf/internal/core"
)

// WritePDF renders a titled tabular report with a footer row carrying the
// period totals for gross amount, IR and CSRF.
func WritePDF(w io.Writer, invs []core.Invoice, keys []string, periodLabel string) error {
	if len(invs) == 0 {
		return ErrNoRecords
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	title := "Controle EFD-Reinf"
	if periodLabel != "" {
		title += " - " + periodLabel
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(keys))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range Headers(keys) {
		pdf.CellFormat(colW, 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, inv := range invs {
		for _, v := range Row(inv, keys) {
			pdf.CellFormat(colW, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	totals := core.TotalsFor(invs)
	pdf.SetFont("Helvetica", "B", 8)
	for i, k := range keys {
		v := ""
		switch {
		case i == 0:
			v = "Totais"
		case k == "gross":
			v = totals.Gross.Plain()
		case k == "ir":
			v = totals.IR.Plain()
		case k == "csrf":
			v = totals.CSRF.Plain()
		}
		pdf.CellFormat(colW, 7, v, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
