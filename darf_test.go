package carteira

import (
	"encoding/json"
	"testing"

	"github.com/etnz/carteira/date"
)

func TestDueDate(t *testing.T) {
	testCases := []struct {
		competence date.Month
		want       string
	}{
		{date.NewMonth(2024, 1), "2024-02-29"},
		{date.NewMonth(2024, 2), "2024-03-28"}, // Good Friday on the 29th
		{date.NewMonth(2024, 7), "2024-08-30"},
		{date.NewMonth(2023, 11), "2023-12-29"},
		{date.NewMonth(2024, 12), "2025-01-31"},
	}
	for _, tc := range testCases {
		t.Run(tc.competence.String(), func(t *testing.T) {
			if got := DueDate(tc.competence); got.String() != tc.want {
				t.Errorf("DueDate(%s) = %s, want %s", tc.competence, got, tc.want)
			}
		})
	}
}

func TestGenerateDarfs(t *testing.T) {
	results := []MonthlyResult{
		{Month: date.NewMonth(2024, 1), TaxDueDay: BRL("200"), WithheldDay: BRL("100"), TaxPayableDay: BRL("100")},
		{Month: date.NewMonth(2024, 2), NetGainSwing: BRL("1500"), TaxDueSwing: BRL("225")},
		{Month: date.NewMonth(2024, 3), ExemptSwing: true, NetGainSwing: BRL("400")},                                // exempt
		{Month: date.NewMonth(2024, 4), TaxDueDay: BRL("80"), WithheldDay: BRL("100"), CarriedLossSwing: BRL("10")}, // fully withheld
		{Month: date.NewMonth(2024, 5), TaxPayableDay: BRL("40"), TaxDueSwing: BRL("15")},
	}

	darfs := GenerateDarfs(results)

	want := []struct {
		category   DarfCategory
		competence string
		amount     string
		due        string
	}{
		{DayTrade, "2024-01", "100", "2024-02-29"},
		{SwingTrade, "2024-02", "225", "2024-03-28"},
		{DayTrade, "2024-05", "40", "2024-06-28"},
		{SwingTrade, "2024-05", "15", "2024-06-28"},
	}
	if len(darfs) != len(want) {
		t.Fatalf("got %d DARFs, want %d", len(darfs), len(want))
	}
	for i, w := range want {
		d := darfs[i]
		if d.Code != DarfCode {
			t.Errorf("DARF %d: code = %q, want %q", i, d.Code, DarfCode)
		}
		if d.Category != w.category || d.Competence.String() != w.competence || d.DueDate.String() != w.due {
			t.Errorf("DARF %d = %s %s due %s, want %s %s due %s", i, d.Category, d.Competence, d.DueDate, w.category, w.competence, w.due)
		}
		assertMoney(t, "amount", d.Amount, w.amount)
		if d.Paid {
			t.Errorf("DARF %d is paid, want pending", i)
		}
	}
}

func TestDarf_JSON(t *testing.T) {
	d := newDarf(DayTrade, date.NewMonth(2024, 1), BRL("100.5"))
	got, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	want := `{"code":"6015","category":"day-trade","competence":"2024-01","amount":100.5,"dueDate":"2024-02-29","paid":false}`
	if string(got) != want {
		t.Errorf("Marshal() got %s, want %s", got, want)
	}
}
