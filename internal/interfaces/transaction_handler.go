package interfaces

import (
	"context"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

// Outcome is the business result of handling one record.
type Outcome int

const (
	Success Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "success"
}

// TransactionHandler applies one validated record against a store.
// Only store failures are returned as errors.
type TransactionHandler interface {
	Handle(ctx context.Context, tx models.Transaction, store LedgerStore) (Outcome, error)
}

// RecordSource yields records in input order. Next returns io.EOF when the
// source is exhausted.
type RecordSource interface {
	Next(ctx context.Context) (models.Transaction, error)
}
