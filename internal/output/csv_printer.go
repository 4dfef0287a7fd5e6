package output

import (
	"encoding/csv"
	"io"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

type CSVPrinter struct{}

func (CSVPrinter) Print(w io.Writer, accounts []models.Account) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows(accounts)); err != nil {
		return err
	}
	return writer.Error()
}
