package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// It hands out copies so callers never alias the stored state.
type MemoryLedgerStore struct {
	mu           sync.Mutex
	accounts     map[models.ClientID]models.Account
	transactions map[models.ClientID][]models.Transaction // per client, in processing order
}

// NewMemoryLedgerStore creates an empty store
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts:     make(map[models.ClientID]models.Account),
		transactions: make(map[models.ClientID][]models.Transaction),
	}
}

func (m *MemoryLedgerStore) GetOrCreateAccount(ctx context.Context, client models.ClientID) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[client]
	if !exists {
		account = models.NewAccount(client)
		m.accounts[client] = account
	}
	return account, nil
}

func (m *MemoryLedgerStore) GetAccount(ctx context.Context, client models.ClientID) (models.Account, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[client]
	return account, exists, nil
}

func (m *MemoryLedgerStore) PutAccount(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts[account.ClientID] = account
	return nil
}

func (m *MemoryLedgerStore) CountAccounts(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.accounts), nil
}

// Accounts returns every account in no particular order.
func (m *MemoryLedgerStore) Accounts(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		result = append(result, account)
	}
	return result, nil
}

func (m *MemoryLedgerStore) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions[tx.ClientID] = append(m.transactions[tx.ClientID], tx)
	return nil
}

func (m *MemoryLedgerStore) Transactions(ctx context.Context, client models.ClientID) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.transactions[client]
	copied := make([]models.Transaction, len(history))
	copy(copied, history)
	return copied, nil
}

func (m *MemoryLedgerStore) FindNonDisputingTransaction(ctx context.Context, client models.ClientID, id models.TransactionID) (models.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.findLocked(client, id)
	if i < 0 {
		return models.Transaction{}, false, nil
	}
	return m.transactions[client][i], true, nil
}

// UpdateTransactionStatus is a no-op when no matching record exists.
func (m *MemoryLedgerStore) UpdateTransactionStatus(ctx context.Context, client models.ClientID, id models.TransactionID, status models.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.findLocked(client, id); i >= 0 {
		m.transactions[client][i].Status = status
	}
	return nil
}

func (m *MemoryLedgerStore) Close() error { return nil }

// findLocked scans the history backwards so the latest matching record wins.
func (m *MemoryLedgerStore) findLocked(client models.ClientID, id models.TransactionID) int {
	history := m.transactions[client]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].TransactionID == id && !history[i].IsDisputing() {
			return i
		}
	}
	return -1
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
