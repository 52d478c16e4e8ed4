package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/carteira"
)

// PositionsMarkdown renders the open positions.
func PositionsMarkdown(positions []carteira.Position) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Positions\n\n")

	var total carteira.Money
	open := 0
	for _, p := range positions {
		if p.Quantity.IsZero() {
			continue
		}
		if open == 0 {
			fmt.Fprintln(&b, "| Ticker | Quantity | Average Cost | Total Cost |")
			fmt.Fprintln(&b, "|:---|---:|---:|---:|")
		}
		open++
		total = total.Add(p.TotalCost)
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			p.Ticker,
			p.Quantity,
			p.AverageCost,
			p.TotalCost,
		)
	}
	if open == 0 {
		fmt.Fprintln(&b, "No open position.")
		return b.String()
	}
	fmt.Fprintf(&b, "| **%s** | | | **%s** |\n", "Total", total)
	return b.String()
}
