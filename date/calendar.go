package date

import "time"

// fixedHolidays are the Brazilian national holidays with a fixed day.
var fixedHolidays = []struct {
	m     time.Month
	d     int
	since int // first year the holiday applies, 0 for always
}{
	{time.January, 1, 0},      // Confraternização Universal
	{time.April, 21, 0},       // Tiradentes
	{time.May, 1, 0},          // Dia do Trabalho
	{time.September, 7, 0},    // Independência
	{time.October, 12, 0},     // Nossa Senhora Aparecida
	{time.November, 2, 0},     // Finados
	{time.November, 15, 0},    // Proclamação da República
	{time.November, 20, 2024}, // Consciência Negra (Lei 14.759/2023)
	{time.December, 25, 0},    // Natal
}

// Easter returns Easter Sunday of the given year (anonymous Gregorian algorithm).
func Easter(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return New(year, time.Month(month), day)
}

// IsHoliday reports whether d is a national banking holiday in Brazil.
//
// Carnival Monday and Tuesday, Good Friday and Corpus Christi are movable
// and derived from Easter; banks do not open on them.
func IsHoliday(d Date) bool {
	for _, h := range fixedHolidays {
		if d.m == h.m && d.d == h.d && d.y >= h.since {
			return true
		}
	}
	easter := Easter(d.y)
	switch d {
	case easter.Add(-48), easter.Add(-47), easter.Add(-2), easter.Add(60):
		return true
	}
	return false
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func IsBusinessDay(d Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !IsHoliday(d)
}

// LastBusinessDay returns the last business day of the month m.
func LastBusinessDay(m Month) Date {
	d := m.Last()
	for !IsBusinessDay(d) {
		d = d.Add(-1)
	}
	return d
}
