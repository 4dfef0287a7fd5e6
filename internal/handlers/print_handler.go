package handlers

import (
	"context"
	"fmt"
	"io"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

// PrintHandler writes each record to W, then hands it to Next if set.
type PrintHandler struct {
	W    io.Writer
	Next interfaces.TransactionHandler
}

func (h *PrintHandler) Handle(ctx context.Context, tx models.Transaction, store interfaces.LedgerStore) (interfaces.Outcome, error) {
	amount := "-"
	if tx.Amount != nil {
		amount = tx.Amount.String()
	}
	if _, err := fmt.Fprintf(h.W, "%-10s client=%d tx=%d amount=%s\n", tx.Type, tx.ClientID, tx.TransactionID, amount); err != nil {
		return interfaces.Skipped, err
	}

	if h.Next == nil {
		return interfaces.Success, nil
	}
	return h.Next.Handle(ctx, tx, store)
}

var _ interfaces.TransactionHandler = (*PrintHandler)(nil)
