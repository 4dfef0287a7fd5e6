// Command tren applies a CSV file of deposits, withdrawals and disputes to
// client accounts and prints the resulting balances.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	os.Exit(int(run(context.Background(), os.Args[1:])))
}

func run(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.CommandLine
	cdr := subcommands.NewCommander(fs, "tren")
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(cdr.CommandsCommand(), "")

	process := &processCmd{}
	known := map[string]bool{"help": true, "flags": true, "commands": true}
	for _, cmd := range []subcommands.Command{process, &validateCmd{}, &historyCmd{}} {
		cdr.Register(cmd, "")
		known[cmd.Name()] = true
	}

	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}

	// tren <file> is the same as tren process <file>.
	if fs.NArg() == 1 && !known[fs.Arg(0)] {
		process.format = "csv"
		return process.run(ctx, fs.Arg(0))
	}
	return cdr.Execute(ctx)
}
