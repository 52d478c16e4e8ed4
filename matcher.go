package carteira

import "github.com/etnz/carteira/date"

// ClosedTrade is the realized result of (a portion of) a sell.
type ClosedTrade struct {
	Ticker      string
	OpenDate    date.Date // date of the earliest lot consumed
	CloseDate   date.Date // date of the sell
	Quantity    Quantity
	BuyValue    Money // Quantity × average cost before the sell
	SellValue   Money // Quantity × price, minus the allocated sell fees
	Result      Money // SellValue − BuyValue
	DayTrade    bool
	OperationID OperationID // the sell that closed the trade
}

// MarshalJSON implements the json.Marshaler interface for ClosedTrade.
func (c ClosedTrade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", c.Ticker)
	w.Append("openDate", c.OpenDate)
	w.Append("closeDate", c.CloseDate)
	w.Append("quantity", c.Quantity)
	w.Append("buyValue", c.BuyValue)
	w.Append("sellValue", c.SellValue)
	w.Append("result", c.Result)
	w.Append("dayTrade", c.DayTrade)
	w.Append("operation", c.OperationID)
	return w.MarshalJSON()
}

// sameDay tracks the buys of a ticker on one calendar day and how much of
// them were already matched by same day sells.
type sameDay struct {
	on      date.Date
	bought  Quantity
	matched Quantity
}

func (s sameDay) unmatched() Quantity { return s.bought.Sub(s.matched) }

// TradeMatcher turns sells into closed trades, split into their day trade and
// swing trade portions.
type TradeMatcher struct {
	days map[string]sameDay
	lots map[string]lots
}

// NewTradeMatcher creates a matcher with no history.
func NewTradeMatcher() *TradeMatcher {
	return &TradeMatcher{
		days: make(map[string]sameDay),
		lots: make(map[string]lots),
	}
}

func (m *TradeMatcher) today(ticker string, on date.Date) sameDay {
	s := m.days[ticker]
	if s.on != on {
		s = sameDay{on: on}
	}
	return s
}

// Apply observes op. before is the position of the ticker as it was
// immediately before op, it must be captured before the position tracker
// applies op.
//
// A buy produces no trade. A sell produces a day trade for the part of it
// matched against still unmatched buys of the same day, and a swing trade for
// the rest: zero, one or two closed trades in total.
func (m *TradeMatcher) Apply(op Operation, before Position) []ClosedTrade {
	s := m.today(op.Ticker, op.Date)
	if op.Side == Buy {
		s.bought = s.bought.Add(op.Quantity)
		m.days[op.Ticker] = s
		m.lots[op.Ticker] = append(m.lots[op.Ticker], lot{Date: op.Date, Quantity: op.Quantity})
		return nil
	}

	sold := MinQ(op.Quantity, before.Quantity)
	if !sold.IsPositive() {
		return nil
	}
	day := MinQ(sold, s.unmatched())
	swing := sold.Sub(day)
	s.matched = s.matched.Add(day)
	m.days[op.Ticker] = s

	// The sell value and the fees are split by quantity, the last portion
	// takes the remainder so that the portions add up to the whole sell.
	gross, fees := op.UnitPrice.Mul(sold).Round(), op.Fees.Round()

	var trades []ClosedTrade
	held := m.lots[op.Ticker]
	if day.IsPositive() {
		var opened date.Date
		opened, held = held.sellNewest(day)
		dayGross := op.UnitPrice.Mul(day).Round()
		dayFees := fees.Mul(day).Div(sold).Round()
		trades = append(trades, m.closed(op, before, opened, day, dayGross.Sub(dayFees), true))
		gross, fees = gross.Sub(dayGross), fees.Sub(dayFees)
	}
	if swing.IsPositive() {
		var opened date.Date
		opened, held = held.sellOldest(swing)
		trades = append(trades, m.closed(op, before, opened, swing, gross.Sub(fees), false))
	}
	m.lots[op.Ticker] = held
	return trades
}

func (m *TradeMatcher) closed(op Operation, before Position, opened date.Date, q Quantity, sellValue Money, dayTrade bool) ClosedTrade {
	if opened.IsZero() {
		opened = op.Date
	}
	buyValue := before.AverageCost.Mul(q).Round()
	return ClosedTrade{
		Ticker:      op.Ticker,
		OpenDate:    opened,
		CloseDate:   op.Date,
		Quantity:    q,
		BuyValue:    buyValue,
		SellValue:   sellValue,
		Result:      sellValue.Sub(buyValue),
		DayTrade:    dayTrade,
		OperationID: op.ID,
	}
}
