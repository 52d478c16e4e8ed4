package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/etnz/carteira/renderer"
	"github.com/google/subcommands"
)

// operationFlags are the flags shared by buy and sell.
type operationFlags struct {
	date     string
	ticker   string
	quantity string
	price    string
	fees     string
	id       string
}

func (c *operationFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Trade date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "B3 ticker, like PETR4")
	f.StringVar(&c.quantity, "q", "", "Number of shares")
	f.StringVar(&c.price, "p", "", "Unit price in BRL")
	f.StringVar(&c.fees, "f", "0", "Brokerage and exchange fees in BRL")
	f.StringVar(&c.id, "id", "", "Operation id, generated when empty")
}

// operation builds the operation described by the flags.
func (c *operationFlags) operation(side carteira.Side) (carteira.Operation, error) {
	on, err := date.Parse(c.date)
	if err != nil {
		return carteira.Operation{}, err
	}
	q, err := parseDecimal("quantity", c.quantity)
	if err != nil {
		return carteira.Operation{}, err
	}
	price, err := parseDecimal("price", c.price)
	if err != nil {
		return carteira.Operation{}, err
	}
	fees, err := parseDecimal("fees", c.fees)
	if err != nil {
		return carteira.Operation{}, err
	}
	op := carteira.NewOperation(on, c.ticker, side, carteira.Q(q), carteira.M(price), carteira.M(fees))
	op.ID = carteira.OperationID(c.id)
	return op, nil
}

// submit records a single operation.
func (c *operationFlags) submit(ctx context.Context, f *flag.FlagSet, side carteira.Side) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity == "" || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	op, err := c.operation(side)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, err := newService().SubmitOperations(ctx, Investor(), []carteira.Operation{op})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(res.Rejected) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %s\n", res.Rejected[0].Reason)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(output, "Recorded %s %s %s as %s\n", side, c.quantity, carteira.NormalizeTicker(c.ticker), res.IDs[0])
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct{ operationFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of shares" }
func (*buyCmd) Usage() string {
	return `carteira buy -t <ticker> -q <quantity> -p <price> [-f <fees>] [-d <date>]

  Records the purchase of shares. The average cost of the position includes the fees.
`
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.submit(ctx, f, carteira.Buy)
}

// --- Sell Command ---

type sellCmd struct{ operationFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of shares" }
func (*sellCmd) Usage() string {
	return `carteira sell -t <ticker> -q <quantity> -p <price> [-f <fees>] [-d <date>]

  Records the sale of shares. A sale cannot exceed the position held on its date.
`
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.submit(ctx, f, carteira.Sell)
}

// --- Import Command ---

type importCmd struct {
	path string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import operations from JSON files" }
func (*importCmd) Usage() string {
	return `carteira import [-path <jsonpath>] <file>...

  Imports operations from JSON files, or from the standard input with '-'.
  See 'carteira topic import-format' for the accepted formats.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", carteira.DefaultOperationsPath, "JSONPath of the operations in an exported JSON object")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	svc := newService()
	status := subcommands.ExitSuccess
	for _, name := range f.Args() {
		var r io.Reader = os.Stdin
		if name != "-" {
			file, err := os.Open(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			defer file.Close()
			r = file
		}
		res, err := svc.Upload(ctx, Investor(), r, c.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		printMarkdown(fmt.Sprintf("## %s\n\n%s", name, renderer.BatchMarkdown(res)))
		if len(res.Rejected) > 0 {
			status = subcommands.ExitFailure
		}
	}
	return status
}

// --- Remove Command ---

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete operations" }
func (*rmCmd) Usage() string {
	return `carteira rm <id>...

  Deletes operations by id and recomputes everything. An operation cannot be
  deleted when a later sale would no longer be covered.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	svc := newService()
	for _, id := range f.Args() {
		if err := svc.DeleteOperation(ctx, Investor(), carteira.OperationID(id)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(output, "Deleted %s\n", id)
	}
	return subcommands.ExitSuccess
}

// --- Reset Command ---

type resetCmd struct {
	force bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete every operation of the investor" }
func (*resetCmd) Usage() string {
	return `carteira reset -force

  Clears the ledger of the investor: operations and DARF payments.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Confirm the reset")
}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		fmt.Fprintln(os.Stderr, "Error: reset deletes the whole ledger, use -force to confirm")
		return subcommands.ExitUsageError
	}
	if err := newService().Reset(ctx, Investor()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(output, "Ledger of %s cleared\n", Investor())
	return subcommands.ExitSuccess
}
