package handlers

import (
	"context"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

// CollectHandler records every record it receives and never touches the store.
type CollectHandler struct {
	Transactions []models.Transaction
}

func (h *CollectHandler) Handle(_ context.Context, tx models.Transaction, _ interfaces.LedgerStore) (interfaces.Outcome, error) {
	h.Transactions = append(h.Transactions, tx)
	return interfaces.Success, nil
}

// CountByType groups the collected records by type.
func (h *CollectHandler) CountByType() map[models.TransactionType]int {
	counts := make(map[models.TransactionType]int)
	for _, tx := range h.Transactions {
		counts[tx.Type]++
	}
	return counts
}

var _ interfaces.TransactionHandler = (*CollectHandler)(nil)
