package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/carteira"
)

// DarfsMarkdown renders DARFs with their payment status.
func DarfsMarkdown(darfs []carteira.Darf) string {
	var b strings.Builder
	fmt.Fprint(&b, "# DARF\n\n")
	if len(darfs) == 0 {
		fmt.Fprintln(&b, "No DARF.")
		return b.String()
	}

	var pending carteira.Money
	fmt.Fprintln(&b, "| Competence | Category | Code | Amount | Due Date | Status |")
	fmt.Fprintln(&b, "|:---|:---|:---:|---:|:---|:---|")
	for _, d := range darfs {
		if !d.Paid {
			pending = pending.Add(d.Amount)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			d.Competence,
			category(d.Category),
			d.Code,
			d.Amount,
			d.DueDate,
			status(d),
		)
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Pending: %s\n", pending)
	return b.String()
}
