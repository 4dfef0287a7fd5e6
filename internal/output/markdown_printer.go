package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

// MarkdownPrinter renders a markdown table for terminals.
type MarkdownPrinter struct {
	// Raw skips terminal rendering and prints the markdown source.
	Raw bool
}

func (p MarkdownPrinter) Print(w io.Writer, accounts []models.Account) error {
	md := MarkdownTable(accounts)
	if p.Raw {
		_, err := io.WriteString(w, md)
		return err
	}

	rendered, err := glamour.Render(md, "notty")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// MarkdownTable returns the report as a markdown table.
func MarkdownTable(accounts []models.Account) string {
	var b strings.Builder
	b.WriteString("# Accounts\n\n")
	writeRow(&b, Header)
	b.WriteString("|---:|---:|---:|---:|:---:|\n")
	for _, row := range rows(accounts) {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
