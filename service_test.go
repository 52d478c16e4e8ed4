package carteira

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/etnz/carteira/date"
	"github.com/rs/zerolog"
)

func newTestService(store Store) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return NewService(store, zerolog.Nop())
}

func TestService_SubmitOperations(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)

	res, err := s.SubmitOperations(ctx, "ana", []Operation{
		buy("2024-03-01", "PETR4", 100, "30", "0"),
		sell("2024-03-02", "PETR4", 150, "31", "0"), // more than held
		buy("2024-03-02", "PETR", 10, "30", "0"),    // malformed ticker
		sell("2024-03-03", "PETR4", 100, "31", "0"), // checked as if the rejected sell never occurred
	})
	if err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}
	if res.Accepted != 2 || len(res.IDs) != 2 {
		t.Errorf("accepted = %d (%d ids), want 2", res.Accepted, len(res.IDs))
	}
	if len(res.Rejected) != 2 || res.Rejected[0].Index != 1 || res.Rejected[1].Index != 2 {
		t.Fatalf("rejected = %+v, want indexes 1 and 2", res.Rejected)
	}
	var perr *InsufficientPositionError
	if !errors.As(res.Rejected[0].Err, &perr) {
		t.Errorf("rejection 1: %v, want *InsufficientPositionError", res.Rejected[0].Err)
	}
	var verr *ValidationError
	if !errors.As(res.Rejected[1].Err, &verr) {
		t.Errorf("rejection 2: %v, want *ValidationError", res.Rejected[1].Err)
	}

	positions, err := s.Positions(ctx, "ana")
	if err != nil {
		t.Fatalf("Positions() unexpected error: %v", err)
	}
	if len(positions) != 1 || !positions[0].Quantity.IsZero() {
		t.Errorf("Positions() = %+v, want a closed PETR4 position", positions)
	}
	trades, err := s.ClosedTrades(ctx, "ana")
	if err != nil {
		t.Fatalf("ClosedTrades() unexpected error: %v", err)
	}
	if len(trades) != 1 {
		t.Errorf("ClosedTrades() = %d trades, want 1", len(trades))
	}
	results, err := s.MonthlyResults(ctx, "ana")
	if err != nil {
		t.Fatalf("MonthlyResults() unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Month.String() != "2024-03" {
		t.Errorf("MonthlyResults() = %+v, want March 2024", results)
	}
}

func TestService_InvestorsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)

	if _, err := s.SubmitOperations(ctx, "ana", []Operation{buy("2024-03-01", "PETR4", 100, "30", "0")}); err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}
	res, err := s.SubmitOperations(ctx, "bruno", []Operation{sell("2024-03-02", "PETR4", 10, "31", "0")})
	if err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}
	if res.Accepted != 0 {
		t.Errorf("bruno sold shares held by ana")
	}

	var wg sync.WaitGroup
	for _, investor := range []string{"ana", "bruno", "carla", "davi"} {
		wg.Add(1)
		go func(investor string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := s.SubmitOperations(ctx, investor, []Operation{buy("2024-04-01", "VALE3", 1, "60", "0")}); err != nil {
					t.Errorf("SubmitOperations(%s) unexpected error: %v", investor, err)
				}
			}
		}(investor)
	}
	wg.Wait()

	ops, err := s.Operations(ctx, "ana")
	if err != nil {
		t.Fatalf("Operations() unexpected error: %v", err)
	}
	if len(ops) != 11 {
		t.Errorf("ana has %d operations, want 11", len(ops))
	}
}

func TestService_InvalidInvestor(t *testing.T) {
	s := newTestService(nil)
	for _, investor := range []string{"", "../etc", ".hidden", "a b"} {
		var verr *ValidationError
		if _, err := s.Positions(context.Background(), investor); !errors.As(err, &verr) {
			t.Errorf("Positions(%q) error = %v, want *ValidationError", investor, err)
		}
	}
}

func TestService_DeleteOperation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)
	res, err := s.SubmitOperations(ctx, "ana", []Operation{
		buy("2024-03-01", "PETR4", 100, "30", "0"),
		sell("2024-03-01", "PETR4", 100, "31", "0"),
	})
	if err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}

	var nerr *NotFoundError
	if err := s.DeleteOperation(ctx, "ana", "nope"); !errors.As(err, &nerr) {
		t.Errorf("DeleteOperation(nope) error = %v, want *NotFoundError", err)
	}
	var perr *InsufficientPositionError
	if err := s.DeleteOperation(ctx, "ana", res.IDs[0]); !errors.As(err, &perr) {
		t.Errorf("DeleteOperation(buy) error = %v, want *InsufficientPositionError", err)
	}
	if err := s.DeleteOperation(ctx, "ana", res.IDs[1]); err != nil {
		t.Fatalf("DeleteOperation(sell) unexpected error: %v", err)
	}
	trades, _ := s.ClosedTrades(ctx, "ana")
	if len(trades) != 0 {
		t.Errorf("ClosedTrades() = %d trades after deleting the sell, want 0", len(trades))
	}
}

func TestService_Darfs(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)
	if _, err := s.SubmitOperations(ctx, "ana", []Operation{
		buy("2024-04-15", "BBAS3", 1000, "28.00", "0"),
		sell("2024-04-15", "BBAS3", 1000, "30.00", "0"),
	}); err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}

	pending, err := s.PendingDarfs(ctx, "ana")
	if err != nil {
		t.Fatalf("PendingDarfs() unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingDarfs() = %d, want 1", len(pending))
	}
	assertMoney(t, "DARF amount", pending[0].Amount, "100")

	var nerr *NotFoundError
	if err := s.MarkDarfPaid(ctx, "ana", date.NewMonth(2024, 5), DayTrade, date.Date{}); !errors.As(err, &nerr) {
		t.Errorf("MarkDarfPaid(May) error = %v, want *NotFoundError", err)
	}
	if err := s.MarkDarfPaid(ctx, "ana", date.NewMonth(2024, 4), DayTrade, date.MustParse("2024-05-10")); err != nil {
		t.Fatalf("MarkDarfPaid() unexpected error: %v", err)
	}
	pending, _ = s.PendingDarfs(ctx, "ana")
	if len(pending) != 0 {
		t.Errorf("PendingDarfs() = %d after payment, want 0", len(pending))
	}
	all, _ := s.Darfs(ctx, "ana")
	if len(all) != 1 || !all[0].Paid {
		t.Errorf("Darfs() = %+v, want one paid DARF", all)
	}

	sum, err := s.Summary(ctx, "ana")
	if err != nil {
		t.Fatalf("Summary() unexpected error: %v", err)
	}
	assertMoney(t, "realized day", sum.RealizedDay, "2000")
	assertMoney(t, "tax paid", sum.TaxPaid, "100")
	assertMoney(t, "tax pending", sum.TaxPending, "0")
}

func TestService_TaxAddedAfterPaymentIsPending(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)
	march := date.NewMonth(2024, 3)
	if _, err := s.SubmitOperations(ctx, "ana", []Operation{
		buy("2024-03-15", "BBAS3", 1000, "28.00", "0"),
		sell("2024-03-15", "BBAS3", 1000, "30.00", "0"),
	}); err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}
	if err := s.MarkDarfPaid(ctx, "ana", march, DayTrade, date.MustParse("2024-04-10")); err != nil {
		t.Fatalf("MarkDarfPaid() unexpected error: %v", err)
	}

	// A back-dated day trade doubles the tax of March.
	res, err := s.SubmitOperations(ctx, "ana", []Operation{
		buy("2024-03-05", "BBAS3", 1000, "28.00", "0"),
		sell("2024-03-05", "BBAS3", 1000, "30.00", "0"),
	})
	if err != nil || res.Accepted != 2 {
		t.Fatalf("SubmitOperations() = %+v, %v, want 2 accepted", res, err)
	}

	pending, err := s.PendingDarfs(ctx, "ana")
	if err != nil {
		t.Fatalf("PendingDarfs() unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingDarfs() = %+v, want the unpaid difference", pending)
	}
	assertMoney(t, "pending amount", pending[0].Amount, "100")
	if pending[0].Competence != march || pending[0].Category != DayTrade {
		t.Errorf("pending DARF = %+v, want day trade of %s", pending[0], march)
	}

	sum, _ := s.Summary(ctx, "ana")
	assertMoney(t, "tax due", sum.TaxDue, "200")
	assertMoney(t, "tax paid", sum.TaxPaid, "100")
	assertMoney(t, "tax pending", sum.TaxPending, "100")

	// Paying again pays the difference only.
	last := date.MustParse("2024-04-20")
	if err := s.MarkDarfPaid(ctx, "ana", march, DayTrade, last); err != nil {
		t.Fatalf("MarkDarfPaid() unexpected error: %v", err)
	}
	all, _ := s.Darfs(ctx, "ana")
	if len(all) != 1 || !all[0].Paid || all[0].PaidOn != last {
		t.Fatalf("Darfs() = %+v, want one DARF paid on %s", all, last)
	}
	assertMoney(t, "DARF amount", all[0].Amount, "200")

	var verr *ValidationError
	if err := s.MarkDarfPaid(ctx, "ana", march, DayTrade, last); !errors.As(err, &verr) {
		t.Errorf("MarkDarfPaid() of a paid DARF error = %v, want *ValidationError", err)
	}

	// Deleting the back-dated trade lowers the DARF below what was paid.
	for _, id := range []OperationID{res.IDs[1], res.IDs[0]} {
		if err := s.DeleteOperation(ctx, "ana", id); err != nil {
			t.Fatalf("DeleteOperation(%s) unexpected error: %v", id, err)
		}
	}
	all, _ = s.Darfs(ctx, "ana")
	if len(all) != 1 || !all[0].Paid {
		t.Fatalf("Darfs() = %+v, want one paid DARF", all)
	}
	assertMoney(t, "DARF amount", all[0].Amount, "100")
}

func TestService_UnknownInvestorsAreNotKept(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)
	accounts := func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.accounts)
	}

	for _, investor := range []string{"ana", "bia", "caio"} {
		if _, err := s.Positions(ctx, investor); err != nil {
			t.Fatalf("Positions(%s) unexpected error: %v", investor, err)
		}
	}
	if got := accounts(); got != 0 {
		t.Errorf("%d accounts kept after reading unknown investors, want 0", got)
	}

	if _, err := s.SubmitOperations(ctx, "ana", []Operation{buy("2024-03-01", "PETR4", 100, "30", "0")}); err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}
	if got := accounts(); got != 1 {
		t.Errorf("%d accounts kept, want 1", got)
	}

	if err := s.Reset(ctx, "ana"); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}
	if got := accounts(); got != 0 {
		t.Errorf("%d accounts kept after reset, want 0", got)
	}
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	s := newTestService(nil)
	upload := `[
  {"date":"2024-03-01","ticker":"PETR4","operation":"buy","quantity":100,"price":28.50,"fees":10},
  {"date":"not a date","ticker":"PETR4","operation":"buy","quantity":100,"price":28.50},
  {"date":"2024-03-02","ticker":"PETR4","operation":"sell","quantity":50,"price":29}
]`
	res, err := s.Upload(ctx, "ana", strings.NewReader(upload), "")
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}
	if res.Accepted != 2 || len(res.Rejected) != 1 || res.Rejected[0].Index != 1 {
		t.Errorf("Upload() = %+v, want 2 accepted and record 1 rejected", res)
	}
}

func TestService_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := newTestService(store)
	if _, err := s.SubmitOperations(ctx, "ana", []Operation{buy("2024-03-01", "PETR4", 100, "30", "0")}); err != nil {
		t.Fatalf("SubmitOperations() unexpected error: %v", err)
	}
	if err := s.Reset(ctx, "ana"); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}
	positions, _ := s.Positions(ctx, "ana")
	if len(positions) != 0 {
		t.Errorf("Positions() = %d after reset, want 0", len(positions))
	}
	saved, _ := store.Load(ctx, "ana")
	if saved.Len() != 0 {
		t.Errorf("store has %d operations after reset, want 0", saved.Len())
	}
}

// failingStore fails every save.
type failingStore struct{ *MemoryStore }

func (failingStore) Save(ctx context.Context, investor string, ledger *Ledger) error {
	return errors.New("disk full")
}

func TestService_NothingCommittedOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestService(failingStore{NewMemoryStore()})
	if _, err := s.SubmitOperations(ctx, "ana", []Operation{buy("2024-03-01", "PETR4", 100, "30", "0")}); err == nil {
		t.Fatal("SubmitOperations() want an error when the store fails")
	}
	ops, err := s.Operations(ctx, "ana")
	if err != nil {
		t.Fatalf("Operations() unexpected error: %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("Operations() = %d, want nothing committed", len(ops))
	}
}

func TestService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestService(nil)
	if _, err := s.Operations(ctx, "ana"); err != nil {
		t.Fatalf("Operations() unexpected error: %v", err)
	}
	cancel()
	if _, err := s.SubmitOperations(ctx, "ana", []Operation{buy("2024-03-01", "PETR4", 100, "30", "0")}); !errors.Is(err, context.Canceled) {
		t.Errorf("SubmitOperations() error = %v, want context.Canceled", err)
	}
}
