package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/carteira"
)

// OperationsMarkdown renders the ledger operations as a markdown table.
func OperationsMarkdown(ops []carteira.Operation) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Operations\n\n")
	if len(ops) == 0 {
		fmt.Fprintln(&b, "No operations.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Ticker | Operation | Quantity | Price | Fees | Gross | ID |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|:---|")
	for _, op := range ops {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | `%s` |\n",
			op.Date,
			op.Ticker,
			op.Side,
			op.Quantity,
			op.UnitPrice,
			op.Fees,
			op.Gross(),
			op.ID,
		)
	}
	return b.String()
}

// BatchMarkdown renders the outcome of a batch submission.
func BatchMarkdown(res carteira.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Accepted %d operation(s), rejected %d.\n", res.Accepted, len(res.Rejected))
	if len(res.Rejected) == 0 {
		return b.String()
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Record | Reason |")
	fmt.Fprintln(&b, "|---:|:---|")
	for _, r := range res.Rejected {
		fmt.Fprintf(&b, "| %d | %s |\n", r.Index, strings.ReplaceAll(r.Reason, "\n", "; "))
	}
	return b.String()
}
