package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/sheikh-saqib/transaction-engine/internal/output"
)

type processCmd struct {
	format     string
	outputFile string
	out        io.Writer // stdout when nil
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "applies a transactions file and prints the account balances" }
func (*processCmd) Usage() string {
	return `tren process [-format csv|markdown|markdown-raw|xlsx|pdf] [-o <file>] <transactions.csv>

  Applies every record of the file in order and prints one row per account
  with its available, held and total funds and whether it is locked.
  The report is only printed when the whole file was processed.

  tren <transactions.csv> is a shorthand for tren process <transactions.csv>.

`
}

func (p *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.format, "format", "csv", "Report format: csv, markdown, markdown-raw, xlsx or pdf")
	f.StringVar(&p.outputFile, "o", "", "Write the report to this file instead of stdout")
}

func (p *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return p.run(ctx, f.Arg(0))
}

func (p *processCmd) run(ctx context.Context, path string) (status subcommands.ExitStatus) {
	printer, err := output.NewPrinter(p.format)
	if err != nil {
		return fail("%v", err)
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return fail("%v", err)
	}
	defer a.closeInto(&status)

	runner := a.runner(a.processor())
	if _, err := runner.RunFromPath(ctx, path); err != nil {
		return fail("%v", err)
	}

	accounts, err := runner.Store().Accounts(ctx)
	if err != nil {
		return fail("%v", err)
	}

	if p.outputFile == "" {
		w := p.out
		if w == nil {
			w = os.Stdout
		}
		if err := printer.Print(w, accounts); err != nil {
			return fail("could not print report: %v", err)
		}
		return subcommands.ExitSuccess
	}

	file, err := os.Create(p.outputFile)
	if err != nil {
		return fail("could not create %q: %v", p.outputFile, err)
	}
	if err := printer.Print(file, accounts); err != nil {
		file.Close()
		return fail("could not print report: %v", err)
	}
	if err := file.Close(); err != nil {
		return fail("could not write %q: %v", p.outputFile, err)
	}
	return subcommands.ExitSuccess
}
