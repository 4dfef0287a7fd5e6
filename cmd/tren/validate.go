package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/sheikh-saqib/transaction-engine/internal/handlers"
	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

type validateCmd struct {
	verbose bool
	out     io.Writer
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "checks a transactions file without applying it" }
func (*validateCmd) Usage() string {
	return `tren validate [-v] <transactions.csv>

  Decodes and validates every record, then prints how many records of each
  type the file holds. Balances are not computed.

`
}

func (p *validateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.verbose, "v", false, "Print every record")
}

func (p *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) (status subcommands.ExitStatus) {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	w := p.out
	if w == nil {
		w = os.Stdout
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return fail("%v", err)
	}
	defer a.closeInto(&status)

	collect := &handlers.CollectHandler{}
	var handler interfaces.TransactionHandler = collect
	if p.verbose {
		handler = &handlers.PrintHandler{W: w, Next: collect}
	}

	if _, err := a.runner(handler).RunFromPath(ctx, f.Arg(0)); err != nil {
		return fail("%v", err)
	}

	counts := collect.CountByType()
	for _, kind := range []models.TransactionType{models.Deposit, models.Withdrawal, models.Dispute, models.Resolve, models.Chargeback} {
		fmt.Fprintf(w, "%-10s %d\n", kind, counts[kind])
	}
	fmt.Fprintf(w, "%-10s %d\n", "total", len(collect.Transactions))
	return subcommands.ExitSuccess
}
