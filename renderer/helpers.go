package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/carteira"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// tradeType labels a trade for humans.
func tradeType(dayTrade bool) string {
	if dayTrade {
		return "Day trade"
	}
	return "Swing trade"
}

// category labels a DARF category for humans.
func category(c carteira.DarfCategory) string {
	return tradeType(c == carteira.DayTrade)
}

// status labels the payment status of a DARF.
func status(d carteira.Darf) string {
	if d.Paid {
		return "paid on " + d.PaidOn.String()
	}
	return "pending"
}
