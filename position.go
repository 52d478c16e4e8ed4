package carteira

import (
	"fmt"
	"slices"
	"strings"
)

// Position is the running state of one ticker under the average cost method.
type Position struct {
	Ticker      string
	Quantity    Quantity
	AverageCost Money // per share, buy fees included, full precision
	TotalCost   Money // Quantity × AverageCost, in centavos
}

// MarshalJSON implements the json.Marshaler interface for Position.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", p.Ticker)
	w.Append("quantity", p.Quantity)
	w.Append("averageCost", p.AverageCost.exact())
	w.Append("totalCost", p.TotalCost)
	return w.MarshalJSON()
}

// PositionDelta is the change an operation made to a position.
type PositionDelta struct {
	Operation OperationID
	Before    Position
	After     Position
}

// PositionTracker maintains the weighted average cost basis of every ticker.
// Its zero value is not ready to use, see NewPositionTracker.
type PositionTracker struct {
	positions map[string]Position
}

// NewPositionTracker creates a tracker with no position.
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{positions: make(map[string]Position)}
}

// Position returns the current position of the ticker. An unknown ticker has
// an empty position.
func (t *PositionTracker) Position(ticker string) Position {
	if p, ok := t.positions[ticker]; ok {
		return p
	}
	return Position{Ticker: ticker}
}

// Positions returns every position ever opened, sorted by ticker. Positions
// back to zero are retained.
func (t *PositionTracker) Positions() []Position {
	list := make([]Position, 0, len(t.positions))
	for _, p := range t.positions {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Position) int { return strings.Compare(a.Ticker, b.Ticker) })
	return list
}

// Apply updates the position of the operation's ticker.
//
// A buy moves the average cost to (Q×C + q×p + fees) / (Q+q). A sell leaves
// it unchanged, except when the position is closed where it resets to zero.
func (t *PositionTracker) Apply(op Operation) (PositionDelta, error) {
	before := t.Position(op.Ticker)
	after := before

	switch op.Side {
	case Buy:
		after.Quantity = before.Quantity.Add(op.Quantity)
		cost := before.AverageCost.Mul(before.Quantity).Add(op.UnitPrice.Mul(op.Quantity)).Add(op.Fees)
		after.AverageCost = cost.Div(after.Quantity)
	case Sell:
		if op.Quantity.GreaterThan(before.Quantity) {
			return PositionDelta{}, &InsufficientPositionError{Ticker: op.Ticker, On: op.Date, Held: before.Quantity, Requested: op.Quantity}
		}
		after.Quantity = before.Quantity.Sub(op.Quantity)
		if after.Quantity.IsZero() {
			after.AverageCost = Money{}
		}
	default:
		return PositionDelta{}, fmt.Errorf("unknown operation %q", op.Side)
	}
	after.TotalCost = after.AverageCost.Mul(after.Quantity).Round()

	t.positions[op.Ticker] = after
	return PositionDelta{Operation: op.ID, Before: before, After: after}, nil
}
