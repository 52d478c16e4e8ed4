package carteira

import (
	"fmt"
	"slices"
	"sort"

	"github.com/etnz/carteira/date"
)

// DarfPayment records an amount paid for the DARF of a competence month and
// category. A DARF can be paid in several payments when a recomputation
// raises its amount after it was paid.
type DarfPayment struct {
	Competence date.Month
	Category   DarfCategory
	Amount     Money
	PaidOn     date.Date
}

// Ledger is the ordered record of the operations of one investor.
//
// In a Ledger operations are always sorted by (date, insertion sequence).
type Ledger struct {
	operations []Operation
	payments   []DarfPayment // sorted by competence, category, then payment date
	nextSeq    int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{operations: make([]Operation, 0)}
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{
		operations: slices.Clone(l.operations),
		payments:   slices.Clone(l.payments),
		nextSeq:    l.nextSeq,
	}
}

// RestoreLedger rebuilds a ledger saved by a Store: ops in ledger order and
// the DARF payments. Operations are not validated.
func RestoreLedger(ops []Operation, payments []DarfPayment) *Ledger {
	l := NewLedger()
	for _, op := range ops {
		l.insert(op)
	}
	for _, p := range payments {
		l.MarkPaid(p)
	}
	return l
}

// Len returns the number of operations in the ledger.
func (l *Ledger) Len() int { return len(l.operations) }

// Operations returns a copy of the operations in ledger order.
func (l *Ledger) Operations() []Operation { return slices.Clone(l.operations) }

// Operation returns the operation with this id.
func (l *Ledger) Operation(id OperationID) (Operation, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Operation{}, false
	}
	return l.operations[i], true
}

func (l *Ledger) indexOf(id OperationID) int {
	return slices.IndexFunc(l.operations, func(o Operation) bool { return o.ID == id })
}

// insert places op at its position, after every operation of the same day
// already in the ledger. It assigns the sequence number and an ID when missing.
func (l *Ledger) insert(op Operation) Operation {
	if op.ID == "" {
		op.ID = NewOperationID()
	}
	op.Seq = l.nextSeq
	l.nextSeq++
	i := sort.Search(len(l.operations), func(i int) bool { return l.operations[i].Date.After(op.Date) })
	l.operations = slices.Insert(l.operations, i, op)
	return op
}

// Append validates op and appends it to the ledger.
//
// The whole journal is recomputed with op inserted, so a back-dated sell is
// checked against the position it would actually find on its date, and so is
// every later sell. On error the ledger is left unchanged.
func (l *Ledger) Append(op Operation) (OperationID, error) {
	op, err := op.Validate()
	if err != nil {
		return "", err
	}
	if op.ID != "" && l.indexOf(op.ID) >= 0 {
		return "", &ValidationError{Err: fmt.Errorf("duplicate operation id %q", op.ID)}
	}

	candidate := l.Clone()
	op = candidate.insert(op)
	if _, err := Compute(candidate.operations); err != nil {
		return "", err
	}
	*l = *candidate
	return op.ID, nil
}

// Remove deletes the operation with this id.
//
// It returns a *NotFoundError for an unknown id and an
// *InsufficientPositionError when a later sell would no longer be covered.
func (l *Ledger) Remove(id OperationID) error {
	i := l.indexOf(id)
	if i < 0 {
		return &NotFoundError{What: "operation", ID: string(id)}
	}
	ops := slices.Delete(slices.Clone(l.operations), i, i+1)
	if _, err := Compute(ops); err != nil {
		return err
	}
	l.operations = ops
	return nil
}

// Reset removes every operation and payment.
func (l *Ledger) Reset() {
	*l = *NewLedger()
}

// Payments returns the recorded DARF payments.
func (l *Ledger) Payments() []DarfPayment { return slices.Clone(l.payments) }

// MarkPaid records a DARF payment.
func (l *Ledger) MarkPaid(p DarfPayment) {
	l.payments = append(l.payments, p)
	sort.SliceStable(l.payments, func(i, j int) bool {
		a, b := l.payments[i], l.payments[j]
		if a.Competence != b.Competence {
			return a.Competence.Before(b.Competence)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.PaidOn.Before(b.PaidOn)
	})
}

// paid returns the total paid for a DARF and the date of the last payment.
func (l *Ledger) paid(competence date.Month, category DarfCategory) (total Money, last date.Date) {
	for _, p := range l.payments {
		if p.Competence == competence && p.Category == category {
			total = total.Add(p.Amount)
			last = p.PaidOn
		}
	}
	return total, last
}

// Report computes every derived view of the ledger, DARF payment status included.
//
// A DARF is paid when its payments cover its amount. When they do not, it is
// split into a paid DARF of the amount paid and a pending DARF of the
// difference.
func (l *Ledger) Report() (*Report, error) {
	r, err := Compute(l.operations)
	if err != nil {
		return nil, err
	}
	darfs := make([]Darf, 0, len(r.Darfs))
	for _, d := range r.Darfs {
		paid, paidOn := l.paid(d.Competence, d.Category)
		switch {
		case !paid.IsPositive():
			darfs = append(darfs, d)
		case d.Amount.LessThanOrEqual(paid):
			d.Paid, d.PaidOn = true, paidOn
			darfs = append(darfs, d)
		default:
			settled := d
			settled.Amount, settled.Paid, settled.PaidOn = paid, true, paidOn
			d.Amount = d.Amount.Sub(paid)
			darfs = append(darfs, settled, d)
		}
	}
	r.Darfs = darfs
	return r, nil
}
