package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/carteira"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the portfolio summary of an investor.
func SummaryMarkdown(investor string, s carteira.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Summary of %s", investor))
	doc.PlainText(fmt.Sprintf("%d open position(s), invested cost %s.", s.OpenPositions, s.InvestedCost))

	doc.H2("Realized")
	doc.Table(md.TableSet{
		Header:    []string{"Type", "Sales", "Result", "Carried Loss"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Rows: [][]string{
			{"Swing trade", s.SalesSwing.String(), s.RealizedSwing.SignedString(), s.CarriedLossSwing.String()},
			{"Day trade", s.SalesDay.String(), s.RealizedDay.SignedString(), s.CarriedLossDay.String()},
		},
	})

	doc.H2("Taxes")
	doc.BulletList(
		fmt.Sprintf("Due: %s", s.TaxDue),
		fmt.Sprintf("Paid: %s", s.TaxPaid),
		fmt.Sprintf("Pending: %s", s.TaxPending),
	)

	return doc.String()
}
