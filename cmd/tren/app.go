package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/transaction-engine/internal/config"
	"github.com/sheikh-saqib/transaction-engine/internal/engine"
	"github.com/sheikh-saqib/transaction-engine/internal/events"
	"github.com/sheikh-saqib/transaction-engine/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/ledger"
	"github.com/sheikh-saqib/transaction-engine/internal/logging"
	"github.com/sheikh-saqib/transaction-engine/internal/observability/metrics"
	"github.com/sheikh-saqib/transaction-engine/internal/storage"
	"github.com/sheikh-saqib/transaction-engine/internal/storage/memory"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// as a short lived CLI it is fine to keep the global flags as package variables.
var configPath = flag.String("config", "", "Path to a yaml configuration file")

// app holds what every command needs for one run.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	runID     string
	metrics   *metrics.Recorder
	publisher interfaces.EventPublisher
	store     interfaces.LedgerStore
}

// newApp loads the configuration and opens the store and the publisher.
// With memoryOnly the configured store driver is ignored.
func newApp(ctx context.Context, memoryOnly bool) (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		runID:   uuid.New().String(),
		metrics: metrics.NewRecorder(),
	}

	if memoryOnly {
		a.store = memory.NewMemoryLedgerStore()
	} else {
		a.store, err = storage.Open(ctx, cfg.Store, a.runID)
		if err != nil {
			logger.Error("open store failed", zap.String("driver", cfg.Store.Driver), zap.Error(err))
			return nil, err
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		a.publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		a.publisher = events.NewLoggingPublisher(logger)
	}

	return a, nil
}

func (a *app) processor() *ledger.Processor {
	return ledger.NewProcessor(
		ledger.WithLogger(a.logger),
		ledger.WithMetrics(a.metrics),
		ledger.WithPublisher(a.publisher),
		ledger.WithRunID(a.runID),
	)
}

func (a *app) runner(handler interfaces.TransactionHandler) *engine.Runner {
	return engine.NewRunner(handler, a.store,
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
		engine.WithRunID(a.runID),
	)
}

// close flushes metrics and releases the store and the publisher.
func (a *app) close() error {
	var errs error
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			errs = errors.Join(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := a.publisher.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("close store: %w", err))
	}
	_ = a.logger.Sync()
	return errs
}

// closeInto closes a and turns a successful status into a failure when
// closing does not succeed.
func (a *app) closeInto(status *subcommands.ExitStatus) {
	if err := a.close(); err != nil {
		if *status == subcommands.ExitSuccess {
			*status = fail("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// fail reports err on stderr and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
