package carteira

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/carteira/date"
)

func TestOperation_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		op      Operation
		wantErr bool
	}{
		{name: "valid buy", op: buy("2024-03-01", "PETR4", 100, "28.50", "10")},
		{name: "valid sell without fees", op: sell("2024-03-01", "VALE3", 1, "60", "0")},
		{name: "unit", op: buy("2024-03-01", "TAEE11", 10, "35", "0")},
		{name: "fractional market", op: buy("2024-03-01", "ITSA4F", 7, "9.87", "0")},
		{name: "lower case is normalized", op: buy("2024-03-01", " petr4 ", 1, "28", "0")},
		{name: "zero quantity", op: buy("2024-03-01", "PETR4", 0, "28", "0"), wantErr: true},
		{name: "negative quantity", op: buy("2024-03-01", "PETR4", -5, "28", "0"), wantErr: true},
		{name: "zero price", op: buy("2024-03-01", "PETR4", 5, "0", "0"), wantErr: true},
		{name: "negative fees", op: buy("2024-03-01", "PETR4", 5, "28", "-1"), wantErr: true},
		{name: "malformed ticker", op: buy("2024-03-01", "PETR", 5, "28", "0"), wantErr: true},
		{name: "empty ticker", op: buy("2024-03-01", "", 5, "28", "0"), wantErr: true},
		{name: "missing date", op: NewOperation(date.Date{}, "PETR4", Buy, Q(1), BRL("1"), BRL("0")), wantErr: true},
		{name: "unknown side", op: NewOperation(date.MustParse("2024-03-01"), "PETR4", Side("short"), Q(1), BRL("1"), BRL("0")), wantErr: true},
		{name: "fractional quantity", op: NewOperation(date.MustParse("2024-03-01"), "PETR4", Buy, Q(1.5), BRL("1"), BRL("0")), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.op.Validate()
			if tc.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Validate() error = %v, want a *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if got.Ticker != NormalizeTicker(tc.op.Ticker) {
				t.Errorf("Validate() ticker = %q, want %q", got.Ticker, NormalizeTicker(tc.op.Ticker))
			}
		})
	}
}

func TestOperation_ValidateReportsAllProblems(t *testing.T) {
	_, err := buy("2024-03-01", "X", 0, "0", "-1").Validate()
	if err == nil {
		t.Fatal("Validate() want an error")
	}
	for _, want := range []string{"malformed ticker", "quantity must be positive", "price must be positive", "fees must not be negative"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %q", err, want)
		}
	}
}

func TestOperation_JSON(t *testing.T) {
	t.Run("upload record", func(t *testing.T) {
		var op Operation
		record := `{"date":"2024-03-01","ticker":"petr4","operation":"SELL","quantity":80,"price":32.00,"fees":8}`
		if err := json.Unmarshal([]byte(record), &op); err != nil {
			t.Fatalf("Unmarshal() unexpected error: %v", err)
		}
		if op.Side != Sell {
			t.Errorf("side = %q, want %q", op.Side, Sell)
		}
		if op.Date.String() != "2024-03-01" {
			t.Errorf("date = %s, want 2024-03-01", op.Date)
		}
		assertQuantity(t, "quantity", op.Quantity, 80)
		assertMoney(t, "price", op.UnitPrice, "32")
		assertMoney(t, "fees", op.Fees, "8")
	})

	t.Run("fees default to zero", func(t *testing.T) {
		var op Operation
		record := `{"date":"2024-03-01","ticker":"PETR4","operation":"buy","quantity":1,"price":28.5}`
		if err := json.Unmarshal([]byte(record), &op); err != nil {
			t.Fatalf("Unmarshal() unexpected error: %v", err)
		}
		if !op.Fees.IsZero() {
			t.Errorf("fees = %s, want 0", op.Fees.Decimal())
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		var op Operation
		record := `{"date":"2024-03-01","ticker":"PETR4","operation":"short","quantity":1,"price":28.5}`
		if err := json.Unmarshal([]byte(record), &op); err == nil {
			t.Error("Unmarshal() want an error for an unknown operation")
		}
	})

	t.Run("canonical output", func(t *testing.T) {
		op := buy("2024-03-01", "PETR4", 100, "28.505", "10")
		op.ID = "a"
		got, err := json.Marshal(op)
		if err != nil {
			t.Fatalf("Marshal() unexpected error: %v", err)
		}
		want := `{"id":"a","date":"2024-03-01","ticker":"PETR4","operation":"buy","quantity":100,"price":28.505,"fees":10}`
		if string(got) != want {
			t.Errorf("Marshal() got %s, want %s", got, want)
		}
	})
}
