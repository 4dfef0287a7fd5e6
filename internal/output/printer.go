// Package output renders the final account balances.
//
// Every format prints one row per account with the columns client,
// available, held, total and locked, amounts fixed to four decimals.
package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

const amountPlaces = 4

var Header = []string{"client", "available", "held", "total", "locked"}

// Printer writes a report of accounts to w.
type Printer interface {
	Print(w io.Writer, accounts []models.Account) error
}

// NewPrinter returns the printer for format: csv, markdown, markdown-raw,
// xlsx or pdf.
func NewPrinter(format string) (Printer, error) {
	switch format {
	case "", "csv":
		return CSVPrinter{}, nil
	case "markdown", "md":
		return MarkdownPrinter{}, nil
	case "markdown-raw":
		return MarkdownPrinter{Raw: true}, nil
	case "xlsx":
		return XLSXPrinter{}, nil
	case "pdf":
		return PDFPrinter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// rows formats accounts ordered by client id.
func rows(accounts []models.Account) [][]string {
	sorted := slices.Clone(accounts)
	slices.SortFunc(sorted, func(a, b models.Account) int {
		return int(a.ClientID) - int(b.ClientID)
	})

	out := make([][]string, 0, len(sorted))
	for _, account := range sorted {
		out = append(out, []string{
			strconv.FormatUint(uint64(account.ClientID), 10),
			account.Available.StringFixedBank(amountPlaces),
			account.Held.StringFixedBank(amountPlaces),
			account.Total().StringFixedBank(amountPlaces),
			strconv.FormatBool(account.Frozen()),
		})
	}
	return out
}
