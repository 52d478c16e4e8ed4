package carteira

import (
	"fmt"

	"github.com/etnz/carteira/date"
)

// DarfCode is the revenue code of the capital gains tax on stock exchange
// operations (IRPF, ganhos líquidos em operações em bolsa).
const DarfCode = "6015"

// DarfCategory tells which kind of trades a DARF pays the tax of.
type DarfCategory string

const (
	DayTrade   DarfCategory = "day-trade"
	SwingTrade DarfCategory = "swing-trade"
)

// ParseDarfCategory parses "day-trade" or "swing-trade". "day" and "swing"
// are accepted too.
func ParseDarfCategory(s string) (DarfCategory, error) {
	switch s {
	case "day-trade", "day":
		return DayTrade, nil
	case "swing-trade", "swing":
		return SwingTrade, nil
	default:
		return "", fmt.Errorf("unknown DARF category %q want %q or %q", s, DayTrade, SwingTrade)
	}
}

// Darf is a tax payment guide derived from a MonthlyResult.
type Darf struct {
	Code       string
	Category   DarfCategory
	Competence date.Month
	Amount     Money
	DueDate    date.Date
	Paid       bool
	PaidOn     date.Date
}

// MarshalJSON implements the json.Marshaler interface for Darf.
func (d Darf) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("code", d.Code)
	w.Append("category", d.Category)
	w.Append("competence", d.Competence)
	w.Append("amount", d.Amount)
	w.Append("dueDate", d.DueDate)
	w.Append("paid", d.Paid)
	w.Optional("paidOn", d.PaidOn)
	return w.MarshalJSON()
}

// DueDate returns the last business day of the month following competence.
func DueDate(competence date.Month) date.Date {
	return date.LastBusinessDay(competence.Next())
}

// GenerateDarfs projects monthly results into DARFs: a day trade DARF when
// TaxPayableDay is positive and a swing trade DARF when TaxDueSwing is.
// Exempt and fully offset months produce none.
func GenerateDarfs(results []MonthlyResult) []Darf {
	var darfs []Darf
	for _, r := range results {
		if r.TaxPayableDay.IsPositive() {
			darfs = append(darfs, newDarf(DayTrade, r.Month, r.TaxPayableDay))
		}
		if r.TaxDueSwing.IsPositive() {
			darfs = append(darfs, newDarf(SwingTrade, r.Month, r.TaxDueSwing))
		}
	}
	return darfs
}

func newDarf(category DarfCategory, competence date.Month, amount Money) Darf {
	return Darf{
		Code:       DarfCode,
		Category:   category,
		Competence: competence,
		Amount:     amount,
		DueDate:    DueDate(competence),
	}
}
