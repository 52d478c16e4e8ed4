// Package cmd implements the CLI application computing the capital gains
// taxes of an investor.
package cmd

import (
	"cmp"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/carteira"
	"github.com/etnz/carteira/logger"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

const (
	EnvLedgerDir = "CARTEIRA_LEDGER_DIR"
	EnvInvestor  = "CARTEIRA_INVESTOR"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerDir = flag.String("dir", "", "Folder of the ledgers, one <investor>.jsonl file per investor. Defaults to $"+EnvLedgerDir+" or .carteira")
var investorID = flag.String("investor", "", "Investor to work on. Defaults to $"+EnvInvestor+" or 'default'")
var rawOutput = flag.Bool("raw", false, "Print reports as raw markdown instead of rendering them for the terminal")
var verbose = flag.Bool("v", false, "Log what the engine does on stderr")

// output is where reports are printed.
var output io.Writer = os.Stdout

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range commands {
		c.Register(cmd.Command, cmd.group)
	}
}

type groupedCommand struct {
	subcommands.Command
	group string
}

var commands = []groupedCommand{
	{&buyCmd{}, "operations"},
	{&sellCmd{}, "operations"},
	{&importCmd{}, "operations"},
	{&rmCmd{}, "operations"},
	{&resetCmd{}, "operations"},

	{&opsCmd{}, "reports"},
	{&positionsCmd{}, "reports"},
	{&tradesCmd{}, "reports"},
	{&resultsCmd{}, "reports"},
	{&summaryCmd{}, "reports"},

	{&darfCmd{}, "taxes"},
	{&payCmd{}, "taxes"},

	{&serveCmd{}, "server"},
	{&topicCmd{}, "help"},
}

// LedgerDir is the folder of the ledgers.
func LedgerDir() string {
	return cmp.Or(*ledgerDir, os.Getenv(EnvLedgerDir), ".carteira")
}

// Investor is the investor selected on the command line.
func Investor() string {
	return cmp.Or(*investorID, os.Getenv(EnvInvestor), "default")
}

// newService opens the service over the ledger folder.
func newService() *carteira.Service {
	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true})
	return carteira.NewService(carteira.NewFileStore(LedgerDir()), log)
}

// printMarkdown renders markdown for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if !*rawOutput {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(output, out)
				return
			}
		}
	}
	fmt.Fprint(output, md)
}

// parseDecimal reads a decimal flag value.
func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}
