package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
	"github.com/sheikh-saqib/transaction-engine/internal/models/events"
	"github.com/sheikh-saqib/transaction-engine/internal/observability/metrics"
	"github.com/sheikh-saqib/transaction-engine/internal/storage/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func deposit(client models.ClientID, id models.TransactionID, amount string) models.Transaction {
	v := dec(amount)
	return models.NewTransaction(models.Deposit, client, id, &v)
}

func withdrawal(client models.ClientID, id models.TransactionID, amount string) models.Transaction {
	v := dec(amount)
	return models.NewTransaction(models.Withdrawal, client, id, &v)
}

func dispute(client models.ClientID, id models.TransactionID) models.Transaction {
	return models.NewTransaction(models.Dispute, client, id, nil)
}

func resolve(client models.ClientID, id models.TransactionID) models.Transaction {
	return models.NewTransaction(models.Resolve, client, id, nil)
}

func chargeback(client models.ClientID, id models.TransactionID) models.Transaction {
	return models.NewTransaction(models.Chargeback, client, id, nil)
}

// applyAll handles txs in order. After each one it checks that a skipped
// record or a frozen account left available and held untouched.
func applyAll(t *testing.T, p *Processor, store interfaces.LedgerStore, txs ...models.Transaction) []interfaces.Outcome {
	t.Helper()
	ctx := context.Background()

	outcomes := make([]interfaces.Outcome, 0, len(txs))
	for _, tx := range txs {
		before, existed, err := store.GetAccount(ctx, tx.ClientID)
		require.NoError(t, err)

		outcome, err := p.Handle(ctx, tx, store)
		require.NoError(t, err)
		outcomes = append(outcomes, outcome)

		after, found, err := store.GetAccount(ctx, tx.ClientID)
		require.NoError(t, err)
		require.True(t, found)

		if existed && before.Frozen() {
			require.Equal(t, interfaces.Skipped, outcome, "frozen account accepted %s %d", tx.Type, tx.TransactionID)
		}
		if outcome == interfaces.Skipped {
			require.True(t, before.Available.Equal(after.Available), "skipped %s %d moved available", tx.Type, tx.TransactionID)
			require.True(t, before.Held.Equal(after.Held), "skipped %s %d moved held", tx.Type, tx.TransactionID)
		}
	}
	return outcomes
}

func account(t *testing.T, store interfaces.LedgerStore, client models.ClientID) models.Account {
	t.Helper()
	acc, found, err := store.GetAccount(context.Background(), client)
	require.NoError(t, err)
	require.True(t, found, "account %d should exist", client)
	return acc
}

func referenced(t *testing.T, store interfaces.LedgerStore, client models.ClientID, id models.TransactionID) models.Transaction {
	t.Helper()
	tx, found, err := store.FindNonDisputingTransaction(context.Background(), client, id)
	require.NoError(t, err)
	require.True(t, found)
	return tx
}

func TestDepositWithdrawDisputeResolve(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		deposit(1, 1, "100"),
		withdrawal(1, 2, "1.5"),
		dispute(1, 2),
		resolve(1, 2),
		deposit(1, 5, "100"),
	)

	for _, o := range outcomes {
		assert.Equal(t, interfaces.Success, o)
	}
	acc := account(t, store, 1)
	assert.True(t, acc.Total().Equal(dec("198.5")), "total = %s", acc.Total())
	assert.True(t, acc.Held.IsZero())
	assert.False(t, acc.Frozen())
}

func TestResolveReleasesHeldFunds(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	applyAll(t, NewProcessor(), store,
		deposit(1, 1, "1"),
		deposit(1, 2, "2"),
		withdrawal(1, 3, "1.5"),
		deposit(1, 4, "2"),
		dispute(1, 3),
	)
	acc := account(t, store, 1)
	assert.True(t, acc.Available.Equal(dec("2")))
	assert.True(t, acc.Held.Equal(dec("1.5")))
	assert.Equal(t, models.StatusDisputed, referenced(t, store, 1, 3).Status)

	applyAll(t, NewProcessor(), store, resolve(1, 3))

	acc = account(t, store, 1)
	assert.True(t, acc.Total().Equal(dec("3.5")))
	assert.True(t, acc.Held.IsZero())
	assert.False(t, acc.Frozen())
	assert.Equal(t, models.StatusExecuted, referenced(t, store, 1, 3).Status)
}

func TestChargebackFreezesAccount(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		deposit(1, 1, "1"),
		deposit(1, 2, "2"),
		withdrawal(1, 3, "1.5"),
		deposit(1, 4, "2"),
		dispute(1, 3),
		chargeback(1, 3),
	)

	assert.Equal(t, interfaces.Success, outcomes[5])
	acc := account(t, store, 1)
	assert.True(t, acc.Frozen())
	assert.True(t, acc.Total().Equal(dec("2")), "total = %s", acc.Total())
	assert.True(t, acc.Held.IsZero())
	assert.Equal(t, models.StatusChargedBack, referenced(t, store, 1, 3).Status)
}

func TestReferencesToUnknownTransactionsAreSkipped(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		deposit(1, 1, "10"),
		dispute(1, 77),
		resolve(1, 77),
		chargeback(1, 77),
	)

	assert.Equal(t, []interfaces.Outcome{interfaces.Success, interfaces.Skipped, interfaces.Skipped, interfaces.Skipped}, outcomes)
	acc := account(t, store, 1)
	assert.True(t, acc.Available.Equal(dec("10")))
	assert.True(t, acc.Held.IsZero())
	assert.False(t, acc.Frozen())
}

func TestInsufficientFundsSkipsWithdrawal(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		deposit(1, 1, "5"),
		withdrawal(1, 2, "5.0001"),
	)

	assert.Equal(t, interfaces.Skipped, outcomes[1])
	assert.True(t, account(t, store, 1).Total().Equal(dec("5")))

	history, err := store.Transactions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusSkipped, history[1].Status)
}

func TestClientsAreIsolated(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	applyAll(t, NewProcessor(), store,
		deposit(1, 1, "10"),
		deposit(2, 1, "20"),
		deposit(3, 1, "30"),
		withdrawal(2, 2, "5"),
		dispute(1, 1),
		dispute(3, 2), // tx 2 belongs to client 2
		chargeback(1, 1),
		deposit(2, 3, "1"),
	)

	one, two, three := account(t, store, 1), account(t, store, 2), account(t, store, 3)
	assert.True(t, one.Frozen())
	assert.True(t, one.Total().Equal(dec("0")))
	assert.False(t, two.Frozen())
	assert.True(t, two.Available.Equal(dec("16")))
	assert.False(t, three.Frozen())
	assert.True(t, three.Available.Equal(dec("30")))
	assert.True(t, three.Held.IsZero())

	ctx := context.Background()
	for client, want := range map[models.ClientID]int{1: 3, 2: 3, 3: 2} {
		history, err := store.Transactions(ctx, client)
		require.NoError(t, err)
		assert.Len(t, history, want, "client %d", client)
	}
	assert.Equal(t, models.StatusExecuted, referenced(t, store, 2, 1).Status)
}

func TestDisputingTwiceSkipsSecondDispute(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		deposit(1, 1, "10"),
		dispute(1, 1),
		dispute(1, 1),
	)

	assert.Equal(t, interfaces.Skipped, outcomes[2])
	acc := account(t, store, 1)
	assert.True(t, acc.Held.Equal(dec("10")))
	assert.True(t, acc.Available.IsZero())
}

func TestResolveAndChargebackNeedADispute(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		deposit(1, 1, "10"),
		resolve(1, 1),
		chargeback(1, 1),
	)

	assert.Equal(t, interfaces.Skipped, outcomes[1])
	assert.Equal(t, interfaces.Skipped, outcomes[2])
	assert.False(t, account(t, store, 1).Frozen())
	assert.Equal(t, models.StatusExecuted, referenced(t, store, 1, 1).Status)
}

func TestDisputeOfSkippedWithdrawalIsSkipped(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	outcomes := applyAll(t, NewProcessor(), store,
		withdrawal(1, 1, "10"),
		dispute(1, 1),
	)

	assert.Equal(t, []interfaces.Outcome{interfaces.Skipped, interfaces.Skipped}, outcomes)
	assert.True(t, account(t, store, 1).Held.IsZero())
}

func TestDisputeMayDriveAvailableNegative(t *testing.T) {
	store := memory.NewMemoryLedgerStore()

	applyAll(t, NewProcessor(), store,
		deposit(1, 1, "10"),
		withdrawal(1, 2, "8"),
		dispute(1, 1),
	)

	acc := account(t, store, 1)
	assert.True(t, acc.Available.Equal(dec("-8")))
	assert.True(t, acc.Held.Equal(dec("10")))
	assert.True(t, acc.Total().Equal(dec("2")))
}

func TestFrozenAccountSkipsEverything(t *testing.T) {
	store := memory.NewMemoryLedgerStore()
	p := NewProcessor()

	applyAll(t, p, store,
		deposit(1, 1, "10"),
		deposit(1, 2, "5"),
		dispute(1, 1),
		chargeback(1, 1),
	)
	before := account(t, store, 1)
	require.True(t, before.Frozen())

	outcomes := applyAll(t, p, store,
		deposit(1, 3, "100"),
		withdrawal(1, 4, "1"),
		dispute(1, 2),
		resolve(1, 2),
		chargeback(1, 2),
	)

	for _, o := range outcomes {
		assert.Equal(t, interfaces.Skipped, o)
	}
	after := account(t, store, 1)
	assert.True(t, before.Available.Equal(after.Available))
	assert.True(t, before.Held.Equal(after.Held))
	assert.Equal(t, models.StatusExecuted, referenced(t, store, 1, 2).Status)
}

func TestEveryRecordLandsInHistoryOnce(t *testing.T) {
	store := memory.NewMemoryLedgerStore()
	txs := []models.Transaction{
		deposit(1, 1, "10"),
		withdrawal(1, 2, "20"),
		dispute(1, 1),
		dispute(1, 9),
		chargeback(1, 1),
		deposit(1, 3, "1"),
	}

	applyAll(t, NewProcessor(), store, txs...)

	history, err := store.Transactions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, len(txs))
	for i, tx := range history {
		assert.Equal(t, txs[i].Type, tx.Type)
		assert.Equal(t, txs[i].TransactionID, tx.TransactionID)
		assert.NotEqual(t, models.StatusReady, tx.Status)
	}
	assert.Equal(t, models.StatusChargedBack, history[0].Status)
	assert.Equal(t, models.StatusSkipped, history[1].Status)
	assert.Equal(t, models.StatusExecuted, history[2].Status)
	assert.Equal(t, models.StatusSkipped, history[3].Status)
	assert.Equal(t, models.StatusExecuted, history[4].Status)
	assert.Equal(t, models.StatusSkipped, history[5].Status)
}

type recordingPublisher struct {
	keys   []string
	events []events.TransactionProcessed
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, key string, event any) error {
	r.keys = append(r.keys, key)
	r.events = append(r.events, event.(events.TransactionProcessed))
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestPublishesAndCountsEveryRecord(t *testing.T) {
	store := memory.NewMemoryLedgerStore()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	recorder := metrics.NewRecorder()
	p := NewProcessor(WithPublisher(publisher), WithMetrics(recorder), WithRunID("run-1"))

	applyAll(t, p, store,
		deposit(4, 1, "3"),
		withdrawal(4, 2, "5"),
	)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, []string{"4", "4"}, publisher.keys)
	assert.Equal(t, "run-1", publisher.events[0].RunID)
	assert.Equal(t, "success", publisher.events[0].Outcome)
	assert.Equal(t, "executed", publisher.events[0].Status)
	assert.Equal(t, "skipped", publisher.events[1].Outcome)
	assert.True(t, publisher.events[1].Available.Equal(dec("3")))

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.Counter("deposit", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.Counter("withdrawal", "skipped")))
}

// failingStore fails every call of the method named by failOn.
type failingStore struct {
	interfaces.LedgerStore
	failOn string
}

var errBackend = errors.New("backend unavailable")

func (f *failingStore) GetOrCreateAccount(ctx context.Context, client models.ClientID) (models.Account, error) {
	if f.failOn == "GetOrCreateAccount" {
		return models.Account{}, errBackend
	}
	return f.LedgerStore.GetOrCreateAccount(ctx, client)
}

func (f *failingStore) FindNonDisputingTransaction(ctx context.Context, client models.ClientID, id models.TransactionID) (models.Transaction, bool, error) {
	if f.failOn == "FindNonDisputingTransaction" {
		return models.Transaction{}, false, errBackend
	}
	return f.LedgerStore.FindNonDisputingTransaction(ctx, client, id)
}

func (f *failingStore) PutAccount(ctx context.Context, account models.Account) error {
	if f.failOn == "PutAccount" {
		return errBackend
	}
	return f.LedgerStore.PutAccount(ctx, account)
}

func TestStoreFailuresAreReturned(t *testing.T) {
	tests := []struct {
		failOn string
		tx     models.Transaction
	}{
		{"GetOrCreateAccount", deposit(1, 1, "1")},
		{"FindNonDisputingTransaction", dispute(1, 1)},
		{"PutAccount", deposit(1, 1, "1")},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			store := &failingStore{LedgerStore: memory.NewMemoryLedgerStore(), failOn: tt.failOn}

			_, err := NewProcessor().Handle(context.Background(), tt.tx, store)

			assert.ErrorIs(t, err, interfaces.ErrStorage)
			assert.ErrorIs(t, err, errBackend)
		})
	}
}
