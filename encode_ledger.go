package carteira

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/carteira/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CommandType identifies the ledger lines that are not operations.
type CommandType string

// CmdDarfPaid records a DARF payment.
const CmdDarfPaid CommandType = "darf-paid"

// MarshalJSON implements the json.Marshaler interface for DarfPayment.
func (p DarfPayment) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", CmdDarfPaid)
	w.Append("competence", p.Competence)
	w.Append("category", p.Category)
	w.Append("amount", p.Amount)
	w.Append("date", p.PaidOn)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for DarfPayment.
func (p *DarfPayment) UnmarshalJSON(data []byte) error {
	var temp struct {
		Competence date.Month `json:"competence"`
		Category   string     `json:"category"`
		Amount     *Money     `json:"amount"`
		Date       date.Date  `json:"date"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	category, err := ParseDarfCategory(temp.Category)
	if err != nil {
		return err
	}
	if temp.Amount == nil || !temp.Amount.IsPositive() {
		return fmt.Errorf("DARF payment of %s needs a positive amount", temp.Competence)
	}
	*p = DarfPayment{Competence: temp.Competence, Category: category, Amount: *temp.Amount, PaidOn: temp.Date}
	return nil
}

// DecodeLedger decodes a ledger from a stream of JSONL data.
//
// Lines without a "command" are operations, in ledger order: their insertion
// sequence is their line order. Operations are not validated, compute a
// Report to check them.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify command in %q: %w", n, string(lineBytes), err)
		}

		switch identifier.Command {
		case "":
			var op Operation
			if err := json.Unmarshal(lineBytes, &op); err != nil {
				return nil, fmt.Errorf("line %d: invalid operation: %w", n, err)
			}
			op.Ticker = NormalizeTicker(op.Ticker)
			ledger.insert(op)
		case CmdDarfPaid:
			var p DarfPayment
			if err := json.Unmarshal(lineBytes, &p); err != nil {
				return nil, fmt.Errorf("line %d: invalid payment: %w", n, err)
			}
			ledger.MarkPaid(p)
		default:
			return nil, fmt.Errorf("line %d: unknown command: %q", n, identifier.Command)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

// EncodeLedger writes the ledger to w in JSONL format: operations in ledger
// order, then DARF payments.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, op := range ledger.operations {
		if err := encodeLine(w, op); err != nil {
			return err
		}
	}
	for _, p := range ledger.payments {
		if err := encodeLine(w, p); err != nil {
			return err
		}
	}
	return nil
}

func encodeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger line: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write ledger line: %w", err)
	}
	return nil
}
