package stats

import (
	"fmt"
	"time"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the calendar month containing t, in UTC.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// Start is the first instant of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Previous is the month before p; January rolls back to December of the prior year.
func (p Period) Previous() Period {
	return p.Add(-1)
}

// Add moves p by n months.
func (p Period) Add(n int) Period {
	return PeriodOf(p.Start().AddDate(0, n, 0))
}

// Key formats the period as YYYY-MM.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label is the human readable month, e.g. "Oct 2026".
func (p Period) Label() string {
	return p.Start().Format("Jan 2006")
}

// LastPeriods returns n consecutive months ending at anchor, oldest first.
func LastPeriods(anchor Period, n int) []Period {
	out := make([]Period, n)
	for i := 0; i < n; i++ {
		out[i] = anchor.Add(i - (n - 1))
	}
	return out
}
