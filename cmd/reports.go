package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/renderer"
	"github.com/google/subcommands"
)

// reportFlags select between the markdown report and its JSON data.
type reportFlags struct {
	json bool
}

func (c *reportFlags) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print JSON instead of a markdown report")
}

// report reads data from the service and prints it either as JSON or
// rendered by md.
func report[T any](ctx context.Context, c *reportFlags, read func(context.Context, string) (T, error), md func(T) string) subcommands.ExitStatus {
	data, err := read(ctx, Investor())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(md(data))
	return subcommands.ExitSuccess
}

// --- Operations Command ---

type opsCmd struct{ reportFlags }

func (*opsCmd) Name() string     { return "ops" }
func (*opsCmd) Synopsis() string { return "list the operations of the ledger" }
func (*opsCmd) Usage() string {
	return `carteira ops [-json]

  Lists the operations in ledger order. With -json the output can be imported back.
`
}

func (c *opsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.json {
		ops, err := newService().Operations(ctx, Investor())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := carteira.ExportOperations(output, ops); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	return report(ctx, &c.reportFlags, newService().Operations, renderer.OperationsMarkdown)
}

// --- Positions Command ---

type positionsCmd struct{ reportFlags }

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the open positions" }
func (*positionsCmd) Usage() string {
	return `carteira positions [-json]

  Displays the quantity and average cost of every open position.
`
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, &c.reportFlags, newService().Positions, renderer.PositionsMarkdown)
}

// --- Trades Command ---

type tradesCmd struct{ reportFlags }

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "display the closed trades" }
func (*tradesCmd) Usage() string {
	return `carteira trades [-json]

  Displays the trades closed by every sale, split between day trades and swing trades.
`
}

func (c *tradesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, &c.reportFlags, newService().ClosedTrades, renderer.TradesMarkdown)
}

// --- Results Command ---

type resultsCmd struct{ reportFlags }

func (*resultsCmd) Name() string     { return "results" }
func (*resultsCmd) Synopsis() string { return "display the monthly results and taxes" }
func (*resultsCmd) Usage() string {
	return `carteira results [-json]

  Displays, for every month with a sale, the result, the carried losses and the tax due.
`
}

func (c *resultsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, &c.reportFlags, newService().MonthlyResults, renderer.ResultsMarkdown)
}

// --- Summary Command ---

type summaryCmd struct{ reportFlags }

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a portfolio and tax summary" }
func (*summaryCmd) Usage() string {
	return `carteira summary [-json]

  Displays the invested cost, the realized results and the taxes paid and pending.
`
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	md := func(s carteira.Summary) string { return renderer.SummaryMarkdown(Investor(), s) }
	return report(ctx, &c.reportFlags, newService().Summary, md)
}
