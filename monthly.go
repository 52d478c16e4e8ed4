package carteira

import (
	"slices"

	"github.com/etnz/carteira/date"
	"github.com/shopspring/decimal"
)

var (
	// ExemptionThreshold is the monthly swing trade sales volume up to which
	// swing trade gains are not taxed.
	ExemptionThreshold = M(20000)

	SwingTradeRate   = decimal.RequireFromString("0.15")
	DayTradeRate     = decimal.RequireFromString("0.20")
	DayTradeIRRFRate = decimal.RequireFromString("0.01")
)

// MonthlyResult is the tax position of one competence month.
type MonthlyResult struct {
	Month date.Month

	SalesSwing       Money
	RawGainSwing     Money // Σ result of the swing trades
	NetGainSwing     Money // after the carried loss offset
	ExemptSwing      bool
	TaxDueSwing      Money
	CarriedLossSwing Money // after this month, carried into the next one

	SalesDay       Money
	RawGainDay     Money
	NetGainDay     Money
	TaxDueDay      Money
	WithheldDay    Money // IRRF, 1% of the day trade sales
	TaxPayableDay  Money
	CarriedLossDay Money
}

// MarshalJSON implements the json.Marshaler interface for MonthlyResult.
func (r MonthlyResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("month", r.Month)
	w.Append("salesSwing", r.SalesSwing)
	w.Append("rawGainSwing", r.RawGainSwing)
	w.Append("netGainSwing", r.NetGainSwing)
	w.Append("exemptSwing", r.ExemptSwing)
	w.Append("taxDueSwing", r.TaxDueSwing)
	w.Append("carriedLossSwing", r.CarriedLossSwing)
	w.Append("salesDay", r.SalesDay)
	w.Append("rawGainDay", r.RawGainDay)
	w.Append("netGainDay", r.NetGainDay)
	w.Append("taxDueDay", r.TaxDueDay)
	w.Append("withheldDay", r.WithheldDay)
	w.Append("taxPayableDay", r.TaxPayableDay)
	w.Append("carriedLossDay", r.CarriedLossDay)
	return w.MarshalJSON()
}

// offsetLoss applies a carried loss to a raw gain. It returns the net gain and
// the loss carried after the month.
func offsetLoss(raw, carried Money) (net, after Money) {
	if !raw.IsPositive() {
		return Money{}, carried.Add(raw.Abs())
	}
	offset := MinM(raw, carried)
	return raw.Sub(offset), carried.Sub(offset)
}

// Aggregate folds closed trades into one MonthlyResult per competence month
// of their close date, in increasing month order.
//
// Swing and day trades carry independent loss balances. A month whose swing
// sales do not exceed ExemptionThreshold has its swing gain untaxed and does
// not consume the carried swing loss. Months with losses only are reported too.
func Aggregate(trades []ClosedTrade) []MonthlyResult {
	byMonth := make(map[date.Month][]ClosedTrade)
	var months []date.Month
	for _, t := range trades {
		m := t.CloseDate.Competence()
		if _, ok := byMonth[m]; !ok {
			months = append(months, m)
		}
		byMonth[m] = append(byMonth[m], t)
	}
	slices.SortFunc(months, func(a, b date.Month) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})

	var carriedSwing, carriedDay Money
	results := make([]MonthlyResult, 0, len(months))
	for _, m := range months {
		r := MonthlyResult{Month: m}
		for _, t := range byMonth[m] {
			if t.DayTrade {
				r.SalesDay = r.SalesDay.Add(t.SellValue)
				r.RawGainDay = r.RawGainDay.Add(t.Result)
			} else {
				r.SalesSwing = r.SalesSwing.Add(t.SellValue)
				r.RawGainSwing = r.RawGainSwing.Add(t.Result)
			}
		}

		r.ExemptSwing = r.SalesSwing.LessThanOrEqual(ExemptionThreshold)
		if r.ExemptSwing && r.RawGainSwing.IsPositive() {
			r.NetGainSwing = r.RawGainSwing
		} else {
			r.NetGainSwing, carriedSwing = offsetLoss(r.RawGainSwing, carriedSwing)
			if !r.ExemptSwing {
				r.TaxDueSwing = r.NetGainSwing.Rate(SwingTradeRate).Round()
			}
		}
		r.CarriedLossSwing = carriedSwing

		r.NetGainDay, carriedDay = offsetLoss(r.RawGainDay, carriedDay)
		r.TaxDueDay = r.NetGainDay.Rate(DayTradeRate).Round()
		r.WithheldDay = r.SalesDay.Rate(DayTradeIRRFRate).Round()
		r.TaxPayableDay = MaxM(Money{}, r.TaxDueDay.Sub(r.WithheldDay))
		r.CarriedLossDay = carriedDay

		results = append(results, r)
	}
	return results
}
