package date

import (
	"testing"
	"time"
)

func TestEaster(t *testing.T) {
	testCases := []struct {
		year int
		want Date
	}{
		{2023, New(2023, time.April, 9)},
		{2024, New(2024, time.March, 31)},
		{2025, New(2025, time.April, 20)},
		{2026, New(2026, time.April, 5)},
	}
	for _, tc := range testCases {
		if got := Easter(tc.year); got != tc.want {
			t.Errorf("Easter(%d) = %v, want %v", tc.year, got, tc.want)
		}
	}
}

func TestIsBusinessDay(t *testing.T) {
	testCases := []struct {
		name string
		on   Date
		want bool
	}{
		{"plain wednesday", New(2024, time.March, 6), true},
		{"saturday", New(2024, time.March, 9), false},
		{"good friday", New(2024, time.March, 29), false},
		{"carnival tuesday", New(2024, time.February, 13), false},
		{"corpus christi", New(2024, time.May, 30), false},
		{"tiradentes", New(2023, time.April, 21), false},
		{"consciencia negra 2024", New(2024, time.November, 20), false},
		{"november 20 before 2024", New(2023, time.November, 20), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBusinessDay(tc.on); got != tc.want {
				t.Errorf("IsBusinessDay(%v) = %v, want %v", tc.on, got, tc.want)
			}
		})
	}
}

func TestLastBusinessDay(t *testing.T) {
	testCases := []struct {
		month Month
		want  Date
	}{
		{NewMonth(2024, time.February), New(2024, time.February, 29)},
		{NewMonth(2024, time.March), New(2024, time.March, 28)}, // 29 is good friday, 30-31 weekend
		{NewMonth(2024, time.August), New(2024, time.August, 30)},
		{NewMonth(2025, time.May), New(2025, time.May, 30)},
		{NewMonth(2023, time.December), New(2023, time.December, 29)},
	}
	for _, tc := range testCases {
		t.Run(tc.month.String(), func(t *testing.T) {
			if got := LastBusinessDay(tc.month); got != tc.want {
				t.Errorf("LastBusinessDay(%v) = %v, want %v", tc.month, got, tc.want)
			}
		})
	}
}
