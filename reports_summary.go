package carteira

// Summary provides an at-a-glance overview of the portfolio and its taxes.
type Summary struct {
	OpenPositions    int
	InvestedCost     Money // Σ total cost of the open positions
	RealizedSwing    Money // Σ result of the swing trades
	RealizedDay      Money // Σ result of the day trades
	SalesSwing       Money
	SalesDay         Money
	TaxDue           Money // Σ amount of the DARFs
	TaxPaid          Money
	TaxPending       Money
	CarriedLossSwing Money
	CarriedLossDay   Money
}

// NewSummary summarizes a report.
func NewSummary(r *Report) Summary {
	var s Summary
	for _, p := range r.Positions {
		if p.Quantity.IsPositive() {
			s.OpenPositions++
			s.InvestedCost = s.InvestedCost.Add(p.TotalCost)
		}
	}
	for _, t := range r.Trades {
		if t.DayTrade {
			s.RealizedDay = s.RealizedDay.Add(t.Result)
			s.SalesDay = s.SalesDay.Add(t.SellValue)
		} else {
			s.RealizedSwing = s.RealizedSwing.Add(t.Result)
			s.SalesSwing = s.SalesSwing.Add(t.SellValue)
		}
	}
	for _, d := range r.Darfs {
		s.TaxDue = s.TaxDue.Add(d.Amount)
		if d.Paid {
			s.TaxPaid = s.TaxPaid.Add(d.Amount)
		} else {
			s.TaxPending = s.TaxPending.Add(d.Amount)
		}
	}
	if n := len(r.Results); n > 0 {
		s.CarriedLossSwing = r.Results[n-1].CarriedLossSwing
		s.CarriedLossDay = r.Results[n-1].CarriedLossDay
	}
	return s
}

// MarshalJSON implements the json.Marshaler interface for Summary.
func (s Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("openPositions", s.OpenPositions)
	w.Append("investedCost", s.InvestedCost)
	w.Append("realizedSwing", s.RealizedSwing)
	w.Append("realizedDay", s.RealizedDay)
	w.Append("salesSwing", s.SalesSwing)
	w.Append("salesDay", s.SalesDay)
	w.Append("taxDue", s.TaxDue)
	w.Append("taxPaid", s.TaxPaid)
	w.Append("taxPending", s.TaxPending)
	w.Append("carriedLossSwing", s.CarriedLossSwing)
	w.Append("carriedLossDay", s.CarriedLossDay)
	return w.MarshalJSON()
}
