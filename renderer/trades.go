package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/carteira"
)

// TradesMarkdown renders the closed trades, with the realized result of
// each kind of trade.
func TradesMarkdown(trades []carteira.ClosedTrade) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Closed Trades\n\n")
	if len(trades) == 0 {
		fmt.Fprintln(&b, "No closed trade.")
		return b.String()
	}

	var swing, day carteira.Money
	fmt.Fprintln(&b, "| Closed | Opened | Ticker | Type | Quantity | Buy Value | Sell Value | Result |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|")
	for _, t := range trades {
		if t.DayTrade {
			day = day.Add(t.Result)
		} else {
			swing = swing.Add(t.Result)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			t.CloseDate,
			t.OpenDate,
			t.Ticker,
			tradeType(t.DayTrade),
			t.Quantity,
			t.BuyValue,
			t.SellValue,
			t.Result.SignedString(),
		)
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Realized: swing trade %s, day trade %s.\n", swing.SignedString(), day.SignedString())
	return b.String()
}
