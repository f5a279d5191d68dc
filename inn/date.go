package inn

import "time"

// =============================================================================
// DATE - Day-granularity calendar date (the domain never needs clock time)
// =============================================================================

// Date is a calendar date normalized to midnight UTC.
type Date struct {
	t time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// StartOfWeek returns the date aligned back to the preceding week boundary
// (Sunday, inclusive). This is the anchor for the weekend pricing surcharge.
func (d Date) StartOfWeek() Date { return d.AddDays(-int(d.Weekday())) }

// IsWeekBoundary reports whether the date falls on the boundary day itself.
func (d Date) IsWeekBoundary() bool { return d.Weekday() == time.Sunday }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns to - from in whole days (negative if to is earlier).
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

func maxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// =============================================================================
// STAY PERIOD - Half-open [CheckIn, CheckOut)
// =============================================================================

// StayPeriod is a half-open date interval: the check-out date itself is not
// occupied, so back-to-back stays share a turnover day without conflict.
type StayPeriod struct {
	CheckIn  Date
	CheckOut Date
}

// NewStayPeriod constructs a stay; check-in must precede check-out.
func NewStayPeriod(checkIn, checkOut Date) StayPeriod {
	return StayPeriod{CheckIn: checkIn, CheckOut: checkOut}
}

// Validate enforces the check-in < check-out invariant.
func (p StayPeriod) Validate() error {
	if p.CheckIn.IsZero() || p.CheckOut.IsZero() {
		return &ValidationError{Field: "stay", Reason: "malformed dates"}
	}
	if !p.CheckIn.Before(p.CheckOut) {
		return &ValidationError{Field: "stay", Reason: "check-in must precede check-out"}
	}
	return nil
}

// Nights returns the number of occupied nights.
func (p StayPeriod) Nights() int { return DaysBetween(p.CheckIn, p.CheckOut) }

// Overlaps reports whether two half-open intervals share any night:
// [a,b) and [c,d) conflict iff a < d AND b > c.
func (p StayPeriod) Overlaps(other StayPeriod) bool {
	return p.CheckIn.Before(other.CheckOut) && p.CheckOut.After(other.CheckIn)
}

// OverlapNights returns the number of nights the two intervals share,
// clamped at zero. Used by revenue proration and popularity.
func (p StayPeriod) OverlapNights(other StayPeriod) int {
	n := DaysBetween(maxDate(p.CheckIn, other.CheckIn), minDate(p.CheckOut, other.CheckOut))
	if n < 0 {
		return 0
	}
	return n
}

func (p StayPeriod) String() string {
	return "[" + p.CheckIn.String() + ", " + p.CheckOut.String() + ")"
}

// MonthPeriod returns the half-open interval covering a calendar month.
func MonthPeriod(year int, month time.Month) StayPeriod {
	start := NewDate(year, month, 1)
	return StayPeriod{CheckIn: start, CheckOut: Date{t: start.t.AddDate(0, 1, 0)}}
}
