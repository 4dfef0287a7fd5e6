package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

// ErrStorage wraps every failure of a LedgerStore backend.
var ErrStorage = errors.New("storage error")

// LedgerStore owns accounts and their transaction histories.
// Histories keep insertion order.
type LedgerStore interface {
	// GetOrCreateAccount returns the account for client, creating an empty one if needed.
	GetOrCreateAccount(ctx context.Context, client models.ClientID) (models.Account, error)
	GetAccount(ctx context.Context, client models.ClientID) (models.Account, bool, error)
	PutAccount(ctx context.Context, account models.Account) error
	CountAccounts(ctx context.Context) (int, error)
	Accounts(ctx context.Context) ([]models.Account, error)

	AppendTransaction(ctx context.Context, tx models.Transaction) error
	Transactions(ctx context.Context, client models.ClientID) ([]models.Transaction, error)
	// FindNonDisputingTransaction returns the latest deposit or withdrawal of
	// client with the given id.
	FindNonDisputingTransaction(ctx context.Context, client models.ClientID, id models.TransactionID) (models.Transaction, bool, error)
	// UpdateTransactionStatus changes the status of the record FindNonDisputingTransaction
	// would return.
	UpdateTransactionStatus(ctx context.Context, client models.ClientID, id models.TransactionID, status models.TransactionStatus) error

	Close() error
}
