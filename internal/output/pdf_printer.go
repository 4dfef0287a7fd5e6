package output

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

var pdfColumnWidths = []float64{25, 40, 40, 40, 25}

type PDFPrinter struct{}

func (PDFPrinter) Print(w io.Writer, accounts []models.Account) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Account Balances")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	for i, name := range Header {
		pdf.CellFormat(pdfColumnWidths[i], 6, name, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows(accounts) {
		for i, value := range row {
			align := "R"
			if i == len(row)-1 {
				align = "C"
			}
			pdf.CellFormat(pdfColumnWidths[i], 6, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
