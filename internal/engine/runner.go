package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/transaction-engine/internal/inputs"
	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
	"github.com/sheikh-saqib/transaction-engine/internal/observability/metrics"
)

var (
	ErrSourceNotFound = errors.New("input source not found")
	ErrInvalidRecord  = errors.New("invalid record")
)

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Records  int
	Skipped  int
	Accounts int
	Frozen   int
	Elapsed  time.Duration
}

// Runner feeds records from a source to a handler, strictly one at a time
// and in source order. The store it owns is the only state carried between
// records.
type Runner struct {
	handler interfaces.TransactionHandler
	store   interfaces.LedgerStore
	logger  *zap.Logger
	metrics *metrics.Recorder
	runID   string
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option { return func(r *Runner) { r.logger = l } }

func WithMetrics(m *metrics.Recorder) Option { return func(r *Runner) { r.metrics = m } }

func WithRunID(id string) Option { return func(r *Runner) { r.runID = id } }

func NewRunner(handler interfaces.TransactionHandler, store interfaces.LedgerStore, opts ...Option) *Runner {
	r := &Runner{
		handler: handler,
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store gives access to the accounts and histories after a run.
func (r *Runner) Store() interfaces.LedgerStore { return r.store }

// RunFromPath runs every record of the CSV file at path.
func (r *Runner) RunFromPath(ctx context.Context, path string) (Summary, error) {
	source, err := inputs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Summary{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		var decodeErr *inputs.DecodeError
		if errors.As(err, &decodeErr) {
			return Summary{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		return Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer source.Close()

	return r.Run(ctx, source)
}

type lineReporter interface {
	Line() int
}

// Run consumes source until it returns io.EOF. Decode, validation and store
// errors stop the run.
func (r *Runner) Run(ctx context.Context, source interfaces.RecordSource) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: r.runID}
	logger := r.logger.With(zap.String("run_id", r.runID))
	logger.Info("run started")

	for {
		tx, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("decode failed", zap.Error(err))
			return summary, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}

		if err := tx.Validate(); err != nil {
			line := summary.Records + 2
			if lr, ok := source.(lineReporter); ok {
				line = lr.Line()
			}
			err = &models.ValidationError{Line: line, Err: err}
			logger.Error("validation failed", zap.Error(err))
			return summary, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}

		outcome, err := r.handler.Handle(ctx, tx, r.store)
		if err != nil {
			logger.Error("handler failed", zap.Error(err))
			return summary, err
		}

		summary.Records++
		if outcome == interfaces.Skipped {
			summary.Skipped++
		}
	}

	accounts, err := r.store.Accounts(ctx)
	if err != nil {
		return summary, err
	}
	summary.Accounts = len(accounts)
	for _, account := range accounts {
		if account.Frozen() {
			summary.Frozen++
		}
	}
	summary.Elapsed = time.Since(start)
	r.metrics.ObserveRun(summary.Elapsed, summary.Accounts, summary.Frozen)

	logger.Info("run finished",
		zap.Int("records", summary.Records),
		zap.Int("skipped", summary.Skipped),
		zap.Int("accounts", summary.Accounts),
		zap.Int("frozen", summary.Frozen),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}
