package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/carteira"
)

// ResultsMarkdown renders the monthly results, one section per kind of trade.
// A section without any sale is skipped.
func ResultsMarkdown(results []carteira.MonthlyResult) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Monthly Results\n\n")
	if len(results) == 0 {
		fmt.Fprintln(&b, "No sale yet.")
		return b.String()
	}
	ConditionalBlock(&b, func(w io.Writer) bool { return renderSwing(w, results) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderDay(w, results) })
	return b.String()
}

func renderSwing(w io.Writer, results []carteira.MonthlyResult) bool {
	fmt.Fprint(w, "## Swing Trade\n\n")
	fmt.Fprintln(w, "| Month | Sales | Result | Exempt | Taxable | Tax (15%) | Carried Loss |")
	fmt.Fprintln(w, "|:---|---:|---:|:---:|---:|---:|---:|")
	printed := false
	for _, r := range results {
		if r.SalesSwing.IsZero() && r.RawGainSwing.IsZero() {
			continue
		}
		printed = true
		exempt := ""
		if r.ExemptSwing {
			exempt = "yes"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			r.Month,
			r.SalesSwing,
			r.RawGainSwing.SignedString(),
			exempt,
			r.NetGainSwing,
			r.TaxDueSwing,
			r.CarriedLossSwing,
		)
	}
	fmt.Fprintln(w)
	return printed
}

func renderDay(w io.Writer, results []carteira.MonthlyResult) bool {
	fmt.Fprint(w, "## Day Trade\n\n")
	fmt.Fprintln(w, "| Month | Sales | Result | Taxable | Tax (20%) | IRRF | Payable | Carried Loss |")
	fmt.Fprintln(w, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	printed := false
	for _, r := range results {
		if r.SalesDay.IsZero() && r.RawGainDay.IsZero() {
			continue
		}
		printed = true
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Month,
			r.SalesDay,
			r.RawGainDay.SignedString(),
			r.NetGainDay,
			r.TaxDueDay,
			r.WithheldDay,
			r.TaxPayableDay,
			r.CarriedLossDay,
		)
	}
	fmt.Fprintln(w)
	return printed
}
