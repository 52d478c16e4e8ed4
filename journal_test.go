package carteira

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/etnz/carteira/date"
	"github.com/shopspring/decimal"
)

func TestCompute_Scenario(t *testing.T) {
	r, err := Compute(withIDs(
		buy("2024-01-10", "PETR4", 100, "28.50", "10"),
		buy("2024-02-05", "PETR4", 50, "30.00", "5"),
		sell("2024-03-12", "PETR4", 80, "32.00", "8"),
	))
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}

	if len(r.Positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(r.Positions))
	}
	p := r.Positions[0]
	assertQuantity(t, "position", p.Quantity, 70)
	// (100×28.50 + 50×30.00 + 15) / 150
	assertMoney(t, "average cost", p.AverageCost, "29.10")

	if len(r.Trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(r.Trades))
	}
	tr := r.Trades[0]
	if tr.DayTrade {
		t.Error("trade is a day trade, want swing")
	}
	assertMoney(t, "sell value", tr.SellValue, "2552.00")
	assertMoney(t, "buy value", tr.BuyValue, "2328.00")
	assertMoney(t, "result", tr.Result, "224.00")

	if len(r.Results) != 1 {
		t.Fatalf("got %d monthly results, want 1", len(r.Results))
	}
	m := r.Results[0]
	if m.Month.String() != "2024-03" {
		t.Errorf("month = %s, want 2024-03", m.Month)
	}
	assertMoney(t, "sales swing", m.SalesSwing, "2552.00")
	if !m.ExemptSwing {
		t.Error("month is not exempt, want exempt")
	}
	if len(r.Darfs) != 0 {
		t.Errorf("got %d DARFs, want none", len(r.Darfs))
	}
	if len(r.Deltas) != 3 {
		t.Errorf("got %d deltas, want 3", len(r.Deltas))
	}
}

func TestCompute_DayTradeDarf(t *testing.T) {
	r, err := Compute(withIDs(
		buy("2024-04-01", "BBAS3", 1000, "27.00", "5"),
		buy("2024-04-15", "BBAS3", 1000, "28.00", "5"),
		sell("2024-04-15", "BBAS3", 1000, "29.00", "5"),
	))
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	if len(r.Trades) != 1 || !r.Trades[0].DayTrade {
		t.Fatalf("trades = %+v, want a single day trade", r.Trades)
	}
	// avg = (27005 + 28005) / 2000 = 27.505
	assertMoney(t, "buy value", r.Trades[0].BuyValue, "27505")
	assertMoney(t, "result", r.Trades[0].Result, "1490")

	m := r.Results[0]
	assertMoney(t, "tax due", m.TaxDueDay, "298")
	assertMoney(t, "withheld", m.WithheldDay, "289.95")
	assertMoney(t, "payable", m.TaxPayableDay, "8.05")

	if len(r.Darfs) != 1 {
		t.Fatalf("got %d DARFs, want 1", len(r.Darfs))
	}
	d := r.Darfs[0]
	if d.Category != DayTrade || d.Competence.String() != "2024-04" || d.DueDate.String() != "2024-05-31" {
		t.Errorf("DARF = %s %s due %s, want day-trade 2024-04 due 2024-05-31", d.Category, d.Competence, d.DueDate)
	}
	assertMoney(t, "DARF amount", d.Amount, "8.05")
}

func TestCompute_InsufficientPosition(t *testing.T) {
	_, err := Compute(withIDs(
		buy("2024-01-10", "PETR4", 100, "28", "0"),
		sell("2024-01-09", "PETR4", 10, "28", "0"), // before the buy
	))
	var perr *InsufficientPositionError
	if !errors.As(err, &perr) {
		t.Fatalf("Compute() error = %v, want *InsufficientPositionError", err)
	}
	if perr.On.String() != "2024-01-09" {
		t.Errorf("error date = %s, want 2024-01-09", perr.On)
	}
}

func TestCompute_Empty(t *testing.T) {
	r, err := Compute(nil)
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	if len(r.Positions)+len(r.Trades)+len(r.Results)+len(r.Darfs) != 0 {
		t.Errorf("Compute(nil) = %+v, want an empty report", r)
	}
}

// randomOperations generates a valid sequence of operations: sells never
// exceed the quantity held.
func randomOperations(rng *rand.Rand, n int) []Operation {
	tickers := []string{"PETR4", "VALE3", "ITUB4"}
	held := make(map[string]int)
	on := date.New(2024, 1, 2)
	var ops []Operation
	for i := 0; i < n; i++ {
		on = on.Add(rng.Intn(3))
		ticker := tickers[rng.Intn(len(tickers))]
		price := M(decimal.New(int64(rng.Intn(5000)+100), -2))
		fees := M(decimal.New(int64(rng.Intn(300)), -2))
		if held[ticker] > 0 && rng.Intn(2) == 0 {
			q := rng.Intn(held[ticker]) + 1
			held[ticker] -= q
			ops = append(ops, NewOperation(on, ticker, Sell, Q(q), price, fees))
			continue
		}
		q := rng.Intn(2000) + 1
		held[ticker] += q
		ops = append(ops, NewOperation(on, ticker, Buy, Q(q), price, fees))
	}
	return withIDs(ops...)
}

func TestCompute_QuantityConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 20; run++ {
		ops := randomOperations(rng, 200)
		r, err := Compute(ops)
		if err != nil {
			t.Fatalf("run %d: Compute() unexpected error: %v", run, err)
		}
		net := make(map[string]Quantity)
		for _, op := range ops {
			if op.Side == Buy {
				net[op.Ticker] = net[op.Ticker].Add(op.Quantity)
			} else {
				net[op.Ticker] = net[op.Ticker].Sub(op.Quantity)
			}
		}
		for _, p := range r.Positions {
			if !p.Quantity.Equal(net[p.Ticker]) || p.Quantity.IsNegative() {
				t.Errorf("run %d: %s position = %s, want %s", run, p.Ticker, p.Quantity, net[p.Ticker])
			}
		}
		var closed, sold Quantity
		for _, tr := range r.Trades {
			closed = closed.Add(tr.Quantity)
		}
		for _, op := range ops {
			if op.Side == Sell {
				sold = sold.Add(op.Quantity)
			}
		}
		if !closed.Equal(sold) {
			t.Errorf("run %d: closed %s shares, sold %s", run, closed, sold)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	ops := randomOperations(rand.New(rand.NewSource(11)), 300)

	encode := func() []byte {
		r, err := Compute(ops)
		if err != nil {
			t.Fatalf("Compute() unexpected error: %v", err)
		}
		data, err := json.Marshal(struct {
			Positions []Position
			Trades    []ClosedTrade
			Results   []MonthlyResult
			Darfs     []Darf
		}{r.Positions, r.Trades, r.Results, r.Darfs})
		if err != nil {
			t.Fatalf("Marshal() unexpected error: %v", err)
		}
		return data
	}

	first, second := encode(), encode()
	if !bytes.Equal(first, second) {
		t.Error("two computations over the same operations differ")
	}
}
