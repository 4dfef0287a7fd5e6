package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
	"github.com/sheikh-saqib/transaction-engine/internal/storage/memory"
)

func TestCollectHandlerKeepsRecordsAndLeavesStoreAlone(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryLedgerStore()
	h := &CollectHandler{}
	amount := decimal.RequireFromString("1")

	for _, tx := range []models.Transaction{
		models.NewTransaction(models.Deposit, 1, 1, &amount),
		models.NewTransaction(models.Dispute, 1, 1, nil),
		models.NewTransaction(models.Deposit, 2, 2, &amount),
	} {
		outcome, err := h.Handle(ctx, tx, store)
		require.NoError(t, err)
		assert.Equal(t, interfaces.Success, outcome)
	}

	assert.Len(t, h.Transactions, 3)
	assert.Equal(t, map[models.TransactionType]int{models.Deposit: 2, models.Dispute: 1}, h.CountByType())

	count, err := store.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPrintHandlerForwardsToNext(t *testing.T) {
	var buf bytes.Buffer
	collect := &CollectHandler{}
	h := &PrintHandler{W: &buf, Next: collect}
	amount := decimal.RequireFromString("2.5")

	_, err := h.Handle(context.Background(), models.NewTransaction(models.Withdrawal, 3, 8, &amount), nil)
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), models.NewTransaction(models.Resolve, 3, 8, nil), nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "withdrawal client=3 tx=8 amount=2.5")
	assert.Contains(t, buf.String(), "resolve    client=3 tx=8 amount=-")
	assert.Len(t, collect.Transactions, 2)
}

func TestPrintHandlerAlone(t *testing.T) {
	var buf bytes.Buffer

	outcome, err := (&PrintHandler{W: &buf}).Handle(context.Background(), models.NewTransaction(models.Dispute, 1, 1, nil), nil)

	require.NoError(t, err)
	assert.Equal(t, interfaces.Success, outcome)
	assert.NotEmpty(t, buf.String())
}
