package output

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

const xlsxSheet = "accounts"

// XLSXPrinter writes the report as a single sheet workbook. Amounts stay
// text so the four decimals survive.
type XLSXPrinter struct{}

func (XLSXPrinter) Print(w io.Writer, accounts []models.Account) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	all := append([][]string{Header}, rows(accounts)...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
