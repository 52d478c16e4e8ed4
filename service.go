package carteira

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/etnz/carteira/date"
	"github.com/rs/zerolog"
)

// Store persists the ledgers of the investors.
type Store interface {
	Load(ctx context.Context, investor string) (*Ledger, error)
	Save(ctx context.Context, investor string, ledger *Ledger) error
	Investors(ctx context.Context) ([]string, error)
}

// Rejection tells why the operation at Index of a batch was not accepted.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// BatchResult is the per operation outcome of a batch submission.
type BatchResult struct {
	Accepted int           `json:"accepted"`
	IDs      []OperationID `json:"ids"`
	Rejected []Rejection   `json:"rejected"`
}

// investorPattern keeps investor ids usable as file names.
var investorPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// account is the state of one investor. Its mutex serializes every access to
// the ledger and the report.
type account struct {
	mu      sync.Mutex
	ledger  *Ledger // nil until loaded
	report  *Report // always computed from ledger
	evicted bool    // removed from the registry, lock again
}

// Service runs the tax engine for many investors.
//
// Investors are independent: each one has its own lock, and operations of
// different investors are processed in parallel. Every mutation recomputes
// the whole report of the investor and is saved before it becomes visible.
type Service struct {
	store Store
	log   zerolog.Logger

	mu       sync.Mutex // guards accounts
	accounts map[string]*account
}

// NewService creates a service persisting ledgers in store.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		log:      log.With().Str("component", "service").Logger(),
		accounts: make(map[string]*account),
	}
}

// lock returns the locked account of the investor, loading it when needed.
// The caller must release it with unlock.
func (s *Service) lock(ctx context.Context, investor string) (*account, error) {
	if !investorPattern.MatchString(investor) {
		return nil, &ValidationError{Err: fmt.Errorf("invalid investor id %q", investor)}
	}
	var a *account
	for {
		s.mu.Lock()
		var ok bool
		a, ok = s.accounts[investor]
		if !ok {
			a = &account{}
			s.accounts[investor] = a
		}
		s.mu.Unlock()

		a.mu.Lock()
		if !a.evicted {
			break
		}
		a.mu.Unlock()
	}

	if a.ledger != nil {
		return a, nil
	}
	ledger, err := s.store.Load(ctx, investor)
	if err != nil {
		s.unlock(investor, a)
		return nil, fmt.Errorf("could not load ledger of %q: %w", investor, err)
	}
	report, err := ledger.Report()
	if err != nil {
		s.unlock(investor, a)
		return nil, fmt.Errorf("ledger of %q is inconsistent: %w", investor, err)
	}
	a.ledger, a.report = ledger, report
	s.log.Debug().Str("investor", investor).Int("operations", ledger.Len()).Msg("ledger loaded")
	return a, nil
}

// unlock releases the account. An account without operations nor payments is
// dropped from the registry, so unknown investors do not pile up.
func (s *Service) unlock(investor string, a *account) {
	if a.ledger == nil || (a.ledger.Len() == 0 && len(a.ledger.payments) == 0) {
		s.mu.Lock()
		if s.accounts[investor] == a {
			delete(s.accounts, investor)
		}
		s.mu.Unlock()
		a.evicted = true
	}
	a.mu.Unlock()
}

// commit recomputes the working ledger, saves it and makes it the current
// state of the account. On error the account is left untouched.
func (s *Service) commit(ctx context.Context, investor string, a *account, working *Ledger) error {
	report, err := working.Report()
	if err != nil {
		var rerr *RecomputationError
		if !errors.As(err, &rerr) {
			err = &RecomputationError{Err: err}
		}
		s.log.Error().Err(err).Str("investor", investor).Msg("recomputation failed, nothing committed")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, investor, working); err != nil {
		s.log.Error().Err(err).Str("investor", investor).Msg("could not save ledger")
		return fmt.Errorf("could not save ledger of %q: %w", investor, err)
	}
	a.ledger, a.report = working, report
	return nil
}

// SubmitOperations validates and appends ops in order. Rejected operations
// are reported by index and the remaining ones are checked as if the
// rejected ones never occurred.
//
// An error is returned only when nothing was committed.
func (s *Service) SubmitOperations(ctx context.Context, investor string, ops []Operation) (BatchResult, error) {
	records := make([]Record, len(ops))
	for i, op := range ops {
		records[i].Operation = op
	}
	return s.submit(ctx, investor, records)
}

// Upload imports records from r (see ImportOperations) and submits them.
func (s *Service) Upload(ctx context.Context, investor string, r io.Reader, path string) (BatchResult, error) {
	records, err := ImportOperations(r, path)
	if err != nil {
		return BatchResult{}, &ValidationError{Err: err}
	}
	return s.submit(ctx, investor, records)
}

func (s *Service) submit(ctx context.Context, investor string, records []Record) (BatchResult, error) {
	a, err := s.lock(ctx, investor)
	if err != nil {
		return BatchResult{}, err
	}
	defer s.unlock(investor, a)

	res := BatchResult{IDs: []OperationID{}, Rejected: []Rejection{}}
	working := a.ledger.Clone()
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, err
		}
		err := rec.Err
		if err == nil {
			var id OperationID
			id, err = working.Append(rec.Operation)
			if err == nil {
				res.Accepted++
				res.IDs = append(res.IDs, id)
				continue
			}
		}
		var rerr *RecomputationError
		if errors.As(err, &rerr) {
			s.log.Error().Err(err).Str("investor", investor).Int("index", i).Msg("recomputation failed, nothing committed")
			return BatchResult{}, err
		}
		res.Rejected = append(res.Rejected, Rejection{Index: i, Reason: err.Error(), Err: err})
	}

	if res.Accepted > 0 {
		if err := s.commit(ctx, investor, a, working); err != nil {
			return BatchResult{}, err
		}
	}
	s.log.Info().Str("investor", investor).Int("accepted", res.Accepted).Int("rejected", len(res.Rejected)).Msg("operations submitted")
	return res, nil
}

// DeleteOperation removes an operation and recomputes everything.
func (s *Service) DeleteOperation(ctx context.Context, investor string, id OperationID) error {
	a, err := s.lock(ctx, investor)
	if err != nil {
		return err
	}
	defer s.unlock(investor, a)

	working := a.ledger.Clone()
	if err := working.Remove(id); err != nil {
		return err
	}
	if err := s.commit(ctx, investor, a, working); err != nil {
		return err
	}
	s.log.Info().Str("investor", investor).Str("operation", string(id)).Msg("operation deleted")
	return nil
}

// MarkDarfPaid records the payment of the pending amount of a generated DARF.
//
// It returns a *NotFoundError when no DARF was generated for the competence
// and category, and a *ValidationError when it is already fully paid.
func (s *Service) MarkDarfPaid(ctx context.Context, investor string, competence date.Month, category DarfCategory, paidOn date.Date) error {
	a, err := s.lock(ctx, investor)
	if err != nil {
		return err
	}
	defer s.unlock(investor, a)

	found := false
	var pending Money
	for _, d := range a.report.Darfs {
		if d.Competence != competence || d.Category != category {
			continue
		}
		found = true
		if !d.Paid {
			pending = pending.Add(d.Amount)
		}
	}
	if !found {
		return &NotFoundError{What: "DARF", ID: fmt.Sprintf("%s/%s", competence, category)}
	}
	if !pending.IsPositive() {
		return &ValidationError{Err: fmt.Errorf("DARF %s/%s is already paid", competence, category)}
	}
	if paidOn.IsZero() {
		paidOn = date.Today()
	}

	working := a.ledger.Clone()
	working.MarkPaid(DarfPayment{Competence: competence, Category: category, Amount: pending, PaidOn: paidOn})
	if err := s.commit(ctx, investor, a, working); err != nil {
		return err
	}
	s.log.Info().Str("investor", investor).Stringer("competence", competence).Str("category", string(category)).Stringer("amount", pending).Msg("DARF paid")
	return nil
}

// Reset clears the ledger of the investor.
func (s *Service) Reset(ctx context.Context, investor string) error {
	a, err := s.lock(ctx, investor)
	if err != nil {
		return err
	}
	defer s.unlock(investor, a)

	if err := s.commit(ctx, investor, a, NewLedger()); err != nil {
		return err
	}
	s.log.Warn().Str("investor", investor).Msg("ledger reset")
	return nil
}

// read runs f with the current report of the investor.
func (s *Service) read(ctx context.Context, investor string, f func(*Ledger, *Report)) error {
	a, err := s.lock(ctx, investor)
	if err != nil {
		return err
	}
	defer s.unlock(investor, a)
	f(a.ledger, a.report)
	return nil
}

// Operations returns the operations of the investor in ledger order.
func (s *Service) Operations(ctx context.Context, investor string) ([]Operation, error) {
	var ops []Operation
	err := s.read(ctx, investor, func(l *Ledger, _ *Report) { ops = l.Operations() })
	return ops, err
}

// Positions returns the positions of the investor, sorted by ticker.
func (s *Service) Positions(ctx context.Context, investor string) ([]Position, error) {
	var list []Position
	err := s.read(ctx, investor, func(_ *Ledger, r *Report) { list = append([]Position{}, r.Positions...) })
	return list, err
}

// ClosedTrades returns the closed trades of the investor, in ledger order.
func (s *Service) ClosedTrades(ctx context.Context, investor string) ([]ClosedTrade, error) {
	var list []ClosedTrade
	err := s.read(ctx, investor, func(_ *Ledger, r *Report) { list = append([]ClosedTrade{}, r.Trades...) })
	return list, err
}

// MonthlyResults returns the monthly results by increasing competence month.
func (s *Service) MonthlyResults(ctx context.Context, investor string) ([]MonthlyResult, error) {
	var list []MonthlyResult
	err := s.read(ctx, investor, func(_ *Ledger, r *Report) { list = append([]MonthlyResult{}, r.Results...) })
	return list, err
}

// Darfs returns every generated DARF, paid or not.
func (s *Service) Darfs(ctx context.Context, investor string) ([]Darf, error) {
	var list []Darf
	err := s.read(ctx, investor, func(_ *Ledger, r *Report) { list = append([]Darf{}, r.Darfs...) })
	return list, err
}

// PendingDarfs returns the DARFs not yet paid.
func (s *Service) PendingDarfs(ctx context.Context, investor string) ([]Darf, error) {
	var list []Darf
	err := s.read(ctx, investor, func(_ *Ledger, r *Report) { list = append([]Darf{}, r.PendingDarfs()...) })
	return list, err
}

// Summary returns the overview of the investor portfolio.
func (s *Service) Summary(ctx context.Context, investor string) (Summary, error) {
	var sum Summary
	err := s.read(ctx, investor, func(_ *Ledger, r *Report) { sum = NewSummary(r) })
	return sum, err
}

// Investors lists the investors known to the store.
func (s *Service) Investors(ctx context.Context) ([]string, error) {
	return s.store.Investors(ctx)
}
