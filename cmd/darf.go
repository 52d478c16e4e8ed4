package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/etnz/carteira/renderer"
	"github.com/google/subcommands"
)

// --- DARF Command ---

type darfCmd struct {
	reportFlags
	pending bool
}

func (*darfCmd) Name() string     { return "darf" }
func (*darfCmd) Synopsis() string { return "display the DARFs to pay" }
func (*darfCmd) Usage() string {
	return `carteira darf [-pending] [-json]

  Displays the DARFs (code 6015) generated for every month with tax to pay,
  their due date and payment status.
`
}

func (c *darfCmd) SetFlags(f *flag.FlagSet) {
	c.reportFlags.SetFlags(f)
	f.BoolVar(&c.pending, "pending", false, "Only display the DARFs not paid yet")
}

func (c *darfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc := newService()
	read := svc.Darfs
	if c.pending {
		read = svc.PendingDarfs
	}
	return report(ctx, &c.reportFlags, read, renderer.DarfsMarkdown)
}

// --- Pay Command ---

type payCmd struct {
	month    string
	category string
	date     string
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "mark a DARF as paid" }
func (*payCmd) Usage() string {
	return `carteira pay -m <YYYY-MM> -c <day-trade|swing-trade> [-d <date>]

  Records the payment of the pending amount of the DARF of a competence month.
  Payments never change the computed taxes.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Competence month of the DARF (YYYY-MM)")
	f.StringVar(&c.category, "c", string(carteira.SwingTrade), "DARF category: day-trade or swing-trade")
	f.StringVar(&c.date, "d", date.Today().String(), "Payment date (YYYY-MM-DD)")
}

func (c *payCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.month == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	competence, err := date.ParseMonth(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	category, err := carteira.ParseDarfCategory(c.category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	paidOn, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if err := newService().MarkDarfPaid(ctx, Investor(), competence, category, paidOn); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(output, "DARF %s %s paid on %s\n", competence, category, paidOn)
	return subcommands.ExitSuccess
}
