package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the layout of a competence month ("YYYY-MM").
const MonthFormat = "2006-01"

// Month is a competence month: the calendar month a tax obligation is attributed to.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns a normalized Month.
func NewMonth(year int, month time.Month) Month {
	return New(year, month, 1).Competence()
}

// ParseMonth parses a "YYYY-MM" competence month.
func ParseMonth(str string) (Month, error) {
	on, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, "YYYY-MM", err)
	}
	return NewMonth(on.Year(), on.Month()), nil
}

func (m Month) Year() int           { return m.y }
func (m Month) Month() time.Month   { return m.m }
func (m Month) IsZero() bool        { return m == Month{} }
func (m Month) First() Date         { return New(m.y, m.m, 1) }
func (m Month) Last() Date          { return New(m.y, m.m+1, 0) }
func (m Month) Next() Month         { return NewMonth(m.y, m.m+1) }
func (m Month) Before(n Month) bool { return m.y < n.y || (m.y == n.y && m.m < n.m) }
func (m Month) After(n Month) bool  { return n.Before(m) }
func (m Month) String() string      { return fmt.Sprintf("%04d-%02d", m.y, int(m.m)) }

// Contains reports whether the day belongs to this month.
func (m Month) Contains(d Date) bool { return d.Competence() == m }

func (m *Month) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	v, err := ParseMonth(str)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Month) MarshalJSON() ([]byte, error) {
	str := m.String()
	return json.Marshal(&str)
}
