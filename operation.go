package carteira

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/etnz/carteira/date"
	"github.com/google/uuid"
)

// Side tells whether an operation buys or sells shares.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide parses "buy" or "sell", case insensitive.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown operation %q want %q or %q", s, Buy, Sell)
	}
}

// OperationID identifies an operation in a ledger.
type OperationID string

// NewOperationID returns a fresh random identifier.
func NewOperationID() OperationID { return OperationID(uuid.NewString()) }

// tickerPattern matches B3 tickers: four letters, one or two digits and the
// optional fractional market suffix.
var tickerPattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}F?$`)

// NormalizeTicker returns the canonical form of a ticker.
func NormalizeTicker(ticker string) string { return strings.ToUpper(strings.TrimSpace(ticker)) }

// Operation is an immutable buy or sell fact.
type Operation struct {
	ID        OperationID
	Seq       int // insertion sequence, breaks ties between operations on the same day
	Date      date.Date
	Ticker    string
	Side      Side
	Quantity  Quantity
	UnitPrice Money
	Fees      Money
}

// NewOperation creates an operation without an ID nor a sequence.
func NewOperation(on date.Date, ticker string, side Side, quantity Quantity, price, fees Money) Operation {
	return Operation{
		Date:      on,
		Ticker:    ticker,
		Side:      side,
		Quantity:  quantity,
		UnitPrice: price,
		Fees:      fees,
	}
}

// Gross returns quantity × unit price, in centavos.
func (o Operation) Gross() Money { return o.UnitPrice.Mul(o.Quantity).Round() }

// Before reports whether o comes before p in the ledger order (date, seq).
func (o Operation) Before(p Operation) bool {
	if o.Date != p.Date {
		return o.Date.Before(p.Date)
	}
	return o.Seq < p.Seq
}

// Validate normalizes the ticker and checks the operation fields. All the
// problems found are reported at once in a *ValidationError.
func (o Operation) Validate() (Operation, error) {
	o.Ticker = NormalizeTicker(o.Ticker)

	var errs error
	if o.Date.IsZero() {
		errs = errors.Join(errs, errors.New("date is missing"))
	}
	if o.Ticker == "" {
		errs = errors.Join(errs, errors.New("ticker is missing"))
	} else if !tickerPattern.MatchString(o.Ticker) {
		errs = errors.Join(errs, fmt.Errorf("malformed ticker %q", o.Ticker))
	}
	if o.Side != Buy && o.Side != Sell {
		errs = errors.Join(errs, fmt.Errorf("unknown operation %q want %q or %q", o.Side, Buy, Sell))
	}
	if !o.Quantity.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("quantity must be positive, got %s", o.Quantity))
	} else if !o.Quantity.IsInteger() {
		errs = errors.Join(errs, fmt.Errorf("quantity must be an integer, got %s", o.Quantity))
	}
	if !o.UnitPrice.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("price must be positive, got %s", o.UnitPrice.Decimal()))
	}
	if o.Fees.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("fees must not be negative, got %s", o.Fees.Decimal()))
	}
	if errs != nil {
		return o, &ValidationError{Err: errs}
	}
	return o, nil
}

// MarshalJSON writes the operation with a stable key order. Seq is not
// persisted, it is the position of the operation in the ledger.
func (o Operation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", o.ID)
	w.Append("date", o.Date)
	w.Append("ticker", o.Ticker)
	w.Append("operation", o.Side)
	w.Append("quantity", o.Quantity)
	w.Append("price", o.UnitPrice.exact())
	w.Append("fees", o.Fees.exact())
	return w.MarshalJSON()
}

// UnmarshalJSON reads an upload record: date, ticker, operation, quantity,
// price and the optional fees.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID        OperationID `json:"id"`
		Date      date.Date   `json:"date"`
		Ticker    string      `json:"ticker"`
		Operation string      `json:"operation"`
		Quantity  Quantity    `json:"quantity"`
		Price     Money       `json:"price"`
		Fees      Money       `json:"fees"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	side, err := ParseSide(temp.Operation)
	if err != nil {
		return err
	}
	*o = Operation{
		ID:        temp.ID,
		Date:      temp.Date,
		Ticker:    temp.Ticker,
		Side:      side,
		Quantity:  temp.Quantity,
		UnitPrice: temp.Price,
		Fees:      temp.Fees,
	}
	return nil
}
