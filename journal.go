package carteira

import (
	"errors"
	"fmt"
	"slices"
)

// Report holds every view derived from a ledger.
type Report struct {
	Positions []Position      // sorted by ticker
	Trades    []ClosedTrade   // in ledger order
	Deltas    []PositionDelta // one per operation, in ledger order
	Results   []MonthlyResult // by increasing competence month
	Darfs     []Darf
}

// PendingDarfs returns the DARFs not yet paid.
func (r *Report) PendingDarfs() []Darf {
	var pending []Darf
	for _, d := range r.Darfs {
		if !d.Paid {
			pending = append(pending, d)
		}
	}
	return pending
}

// Compute runs the whole pipeline over ops in a single forward pass.
//
// For each operation the position of its ticker is captured, the trade
// matcher computes the closed trades against that snapshot, then the
// position tracker applies the operation. Monthly results are folded from the
// closed trades and DARFs projected from the results.
//
// Compute is a pure function of ops: it returns an *InsufficientPositionError
// when a sell exceeds the position held on its date and a *RecomputationError
// when the outputs break an invariant.
func Compute(ops []Operation) (*Report, error) {
	ops = slices.Clone(ops)
	slices.SortStableFunc(ops, func(a, b Operation) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})

	tracker, matcher := NewPositionTracker(), NewTradeMatcher()
	r := &Report{}
	var errs error
	for _, op := range ops {
		before := tracker.Position(op.Ticker)
		if op.Side == Sell && op.Quantity.GreaterThan(before.Quantity) {
			return nil, &InsufficientPositionError{Ticker: op.Ticker, On: op.Date, Held: before.Quantity, Requested: op.Quantity}
		}
		trades := matcher.Apply(op, before)
		if op.Side == Sell {
			// The closed trades of a sell add up to the sell.
			var closed Quantity
			for _, t := range trades {
				closed = closed.Add(t.Quantity)
			}
			if !closed.Equal(op.Quantity) {
				errs = errors.Join(errs, fmt.Errorf("sell of %s %s on %s closed %s", op.Quantity, op.Ticker, op.Date, closed))
			}
		}
		r.Trades = append(r.Trades, trades...)
		delta, err := tracker.Apply(op)
		if err != nil {
			return nil, err
		}
		r.Deltas = append(r.Deltas, delta)
	}
	r.Positions = tracker.Positions()
	r.Results = Aggregate(r.Trades)
	r.Darfs = GenerateDarfs(r.Results)

	if err := errors.Join(errs, r.check(ops)); err != nil {
		return nil, &RecomputationError{Err: err}
	}
	return r, nil
}

// check verifies the invariants binding the report to the operations it was
// computed from.
func (r *Report) check(ops []Operation) error {
	var errs error

	// Σ bought − Σ sold is the position, and never negative on any prefix.
	held := make(map[string]Quantity)
	for _, op := range ops {
		switch op.Side {
		case Buy:
			held[op.Ticker] = held[op.Ticker].Add(op.Quantity)
		case Sell:
			held[op.Ticker] = held[op.Ticker].Sub(op.Quantity)
		}
		if held[op.Ticker].IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("position of %s negative on %s", op.Ticker, op.Date))
		}
	}
	for _, p := range r.Positions {
		if !held[p.Ticker].Equal(p.Quantity) {
			errs = errors.Join(errs, fmt.Errorf("position of %s is %s, operations add up to %s", p.Ticker, p.Quantity, held[p.Ticker]))
		}
	}

	// Months strictly increase and carried losses only grow with a loss.
	var prev MonthlyResult
	for i, m := range r.Results {
		if i > 0 && !prev.Month.Before(m.Month) {
			errs = errors.Join(errs, fmt.Errorf("month %s follows %s", m.Month, prev.Month))
		}
		if m.CarriedLossSwing.GreaterThan(prev.CarriedLossSwing) && !m.RawGainSwing.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("swing loss grew in %s without a loss", m.Month))
		}
		if m.CarriedLossDay.GreaterThan(prev.CarriedLossDay) && !m.RawGainDay.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("day trade loss grew in %s without a loss", m.Month))
		}
		prev = m
	}
	return errs
}
