package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
	"github.com/sheikh-saqib/transaction-engine/internal/models/events"
	"github.com/sheikh-saqib/transaction-engine/internal/observability/metrics"
)

// reasons a record is skipped, used in logs
const (
	reasonFrozen            = "account frozen"
	reasonInsufficientFunds = "insufficient funds"
	reasonUnknownReference  = "referenced transaction not found"
	reasonWrongState        = "referenced transaction in wrong state"
)

// Processor applies records to a LedgerStore: deposits, withdrawals and the
// dispute, resolve and chargeback lifecycle.
//
// It fetches the account, mutates a local copy and writes it back, so it
// relies on records being applied one at a time.
type Processor struct {
	publisher interfaces.EventPublisher
	metrics   *metrics.Recorder
	logger    *zap.Logger
	runID     string
	now       func() time.Time
}

type Option func(*Processor)

func WithPublisher(p interfaces.EventPublisher) Option {
	return func(proc *Processor) { proc.publisher = p }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(proc *Processor) { proc.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(proc *Processor) { proc.logger = l }
}

func WithRunID(id string) Option {
	return func(proc *Processor) { proc.runID = id }
}

// NewProcessor creates a processor. Without options it logs nothing and
// publishes nothing.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// pending status change of the record targeted by a dispute, resolve or chargeback
type referenceUpdate struct {
	id     models.TransactionID
	status models.TransactionStatus
}

// Handle applies tx to the account of tx.ClientID. Business rule violations
// yield interfaces.Skipped; only store failures are returned as errors.
func (p *Processor) Handle(ctx context.Context, tx models.Transaction, store interfaces.LedgerStore) (interfaces.Outcome, error) {
	account, err := store.GetOrCreateAccount(ctx, tx.ClientID)
	if err != nil {
		return interfaces.Skipped, storeErr(err)
	}

	outcome, update, reason, err := p.apply(ctx, &account, tx, store)
	if err != nil {
		return interfaces.Skipped, storeErr(err)
	}

	if update != nil {
		if err := store.UpdateTransactionStatus(ctx, tx.ClientID, update.id, update.status); err != nil {
			return interfaces.Skipped, storeErr(err)
		}
	}

	tx.Status = models.StatusExecuted
	if outcome == interfaces.Skipped {
		tx.Status = models.StatusSkipped
		p.logger.Debug("transaction skipped",
			zap.Uint16("client", uint16(tx.ClientID)),
			zap.Uint32("tx", uint32(tx.TransactionID)),
			zap.Stringer("type", tx.Type),
			zap.String("reason", reason),
		)
	}

	if err := store.AppendTransaction(ctx, tx); err != nil {
		return interfaces.Skipped, storeErr(err)
	}
	if err := store.PutAccount(ctx, account); err != nil {
		return interfaces.Skipped, storeErr(err)
	}

	p.metrics.ObserveRecord(tx.Type.String(), outcome.String())
	p.publish(ctx, tx, outcome, account)
	return outcome, nil
}

// apply mutates account only. The returned update, if any, must be committed
// together with the account.
func (p *Processor) apply(ctx context.Context, account *models.Account, tx models.Transaction, store interfaces.LedgerStore) (interfaces.Outcome, *referenceUpdate, string, error) {
	if account.Frozen() {
		return interfaces.Skipped, nil, reasonFrozen, nil
	}

	switch tx.Type {
	case models.Deposit:
		account.Deposit(tx.AmountOrZero())
		return interfaces.Success, nil, "", nil

	case models.Withdrawal:
		if err := account.Withdraw(tx.AmountOrZero()); err != nil {
			if errors.Is(err, models.ErrInsufficientFunds) {
				return interfaces.Skipped, nil, reasonInsufficientFunds, nil
			}
			return interfaces.Skipped, nil, "", err
		}
		return interfaces.Success, nil, "", nil

	case models.Dispute:
		return p.settle(ctx, account, tx, store, models.StatusExecuted, models.StatusDisputed, func(amount models.Amount) {
			account.Hold(amount)
		})

	case models.Resolve:
		return p.settle(ctx, account, tx, store, models.StatusDisputed, models.StatusExecuted, func(amount models.Amount) {
			account.Release(amount)
		})

	case models.Chargeback:
		return p.settle(ctx, account, tx, store, models.StatusDisputed, models.StatusChargedBack, func(amount models.Amount) {
			account.Chargeback(amount)
			account.Freeze()
		})
	}

	// Validate rejects unknown types before they get here.
	return interfaces.Skipped, nil, models.ErrUnknownTransactionType.Error(), nil
}

// settle looks up the record tx refers to and, when it is in the required
// status, applies effect with its amount and moves it to next.
func (p *Processor) settle(
	ctx context.Context,
	account *models.Account,
	tx models.Transaction,
	store interfaces.LedgerStore,
	required, next models.TransactionStatus,
	effect func(models.Amount),
) (interfaces.Outcome, *referenceUpdate, string, error) {
	ref, found, err := store.FindNonDisputingTransaction(ctx, account.ClientID, tx.TransactionID)
	if err != nil {
		return interfaces.Skipped, nil, "", err
	}
	if !found {
		return interfaces.Skipped, nil, reasonUnknownReference, nil
	}
	if ref.Status != required {
		return interfaces.Skipped, nil, reasonWrongState, nil
	}

	effect(ref.AmountOrZero())
	return interfaces.Success, &referenceUpdate{id: ref.TransactionID, status: next}, "", nil
}

func (p *Processor) publish(ctx context.Context, tx models.Transaction, outcome interfaces.Outcome, account models.Account) {
	if p.publisher == nil {
		return
	}

	event := events.TransactionProcessed{
		RunID:         p.runID,
		ClientID:      uint16(tx.ClientID),
		TransactionID: uint32(tx.TransactionID),
		Type:          tx.Type.String(),
		Outcome:       outcome.String(),
		Status:        tx.Status.String(),
		Available:     account.Available,
		Held:          account.Held,
		Locked:        account.Frozen(),
		OccurredAt:    p.now().UTC(),
	}
	key := strconv.FormatUint(uint64(tx.ClientID), 10)
	if err := p.publisher.Publish(ctx, key, event); err != nil {
		p.logger.Warn("publish failed", zap.Uint32("tx", uint32(tx.TransactionID)), zap.Error(err))
	}
}

func storeErr(err error) error {
	if errors.Is(err, interfaces.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", interfaces.ErrStorage, err)
}

var _ interfaces.TransactionHandler = (*Processor)(nil)
