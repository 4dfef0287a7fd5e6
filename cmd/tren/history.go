package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

type historyCmd struct {
	client int
	out    io.Writer
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "prints every processed record with its final status" }
func (*historyCmd) Usage() string {
	return `tren history [-client <id>] <transactions.csv>

  Applies the file like process does, then lists the records of each client
  in processing order with the status they ended in: executed, disputed,
  charged_back or skipped.

`
}

func (p *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.client, "client", -1, "Only show this client")
}

func (p *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) (status subcommands.ExitStatus) {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	w := p.out
	if w == nil {
		w = os.Stdout
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return fail("%v", err)
	}
	defer a.closeInto(&status)

	runner := a.runner(a.processor())
	if _, err := runner.RunFromPath(ctx, f.Arg(0)); err != nil {
		return fail("%v", err)
	}
	store := runner.Store()

	accounts, err := store.Accounts(ctx)
	if err != nil {
		return fail("%v", err)
	}
	slices.SortFunc(accounts, func(a, b models.Account) int { return int(a.ClientID) - int(b.ClientID) })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "client\ttx\ttype\tamount\tstatus")
	for _, account := range accounts {
		if p.client >= 0 && int(account.ClientID) != p.client {
			continue
		}
		history, err := store.Transactions(ctx, account.ClientID)
		if err != nil {
			return fail("%v", err)
		}
		for _, tx := range history {
			amount := ""
			if tx.Amount != nil {
				amount = tx.Amount.String()
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", tx.ClientID, tx.TransactionID, tx.Type, amount, tx.Status)
		}
	}
	if err := tw.Flush(); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}
