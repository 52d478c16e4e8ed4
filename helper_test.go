package carteira

import (
	"testing"

	"github.com/etnz/carteira/date"
)

// BRL is a helper for tests to create money from a decimal string.
func BRL(s string) Money { return MustParseMoney(s) }

// buy is a helper for tests to create a buy operation.
func buy(on, ticker string, quantity int, price, fees string) Operation {
	return NewOperation(date.MustParse(on), ticker, Buy, Q(quantity), BRL(price), BRL(fees))
}

// sell is a helper for tests to create a sell operation.
func sell(on, ticker string, quantity int, price, fees string) Operation {
	return NewOperation(date.MustParse(on), ticker, Sell, Q(quantity), BRL(price), BRL(fees))
}

// withIDs gives every operation a stable ID and its index as sequence.
func withIDs(ops ...Operation) []Operation {
	for i := range ops {
		ops[i].ID = OperationID(string(rune('a' + i)))
		ops[i].Seq = i
	}
	return ops
}

func assertMoney(t *testing.T, name string, got Money, want string) {
	t.Helper()
	if !got.Equal(BRL(want)) {
		t.Errorf("%s: got %s, want %s", name, got.Decimal(), want)
	}
}

func assertQuantity(t *testing.T, name string, got Quantity, want int) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s: got %s, want %d", name, got, want)
	}
}
