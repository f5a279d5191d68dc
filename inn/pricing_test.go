package inn_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inn-engine/inn"
)

func date(y int, m time.Month, d int) inn.Date { return inn.NewDate(y, m, d) }

func stay(in, out inn.Date) inn.StayPeriod { return inn.NewStayPeriod(in, out) }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStayCost_MidweekStay_NoSurcharge(t *testing.T) {
	// GIVEN: base price 100, Mon Jan 1 -> Wed Jan 3 2024 (2 nights, no week boundary crossed)
	// WHEN: computing the stay cost
	// THEN: cost is exactly 2 nights at base price

	cost := inn.StayCost(money("100"), stay(date(2024, time.January, 1), date(2024, time.January, 3)))

	if !cost.Equal(money("200.00")) {
		t.Errorf("expected 200.00, got %s", cost)
	}
}

func TestStayCost_SpanningOneWeekBoundary(t *testing.T) {
	// GIVEN: Fri Jan 5 -> Sun Jan 7 2024: the aligned Sundays (Dec 31, Jan 7)
	//        are one week apart, and check-out falls on the boundary day
	// WHEN: computing the stay cost
	// THEN: multiplier is 2 + 0.2 - 0.1 = 2.1

	cost := inn.StayCost(money("100"), stay(date(2024, time.January, 5), date(2024, time.January, 7)))

	if !cost.Equal(money("210.00")) {
		t.Errorf("expected 210.00, got %s", cost)
	}
}

func TestStayCost_CheckInOnBoundaryDay(t *testing.T) {
	// GIVEN: Sun Jan 7 -> Tue Jan 9 2024: no week boundary spanned,
	//        check-in on the boundary day
	// WHEN: computing the stay cost
	// THEN: multiplier is 2 + 0.1 = 2.1

	cost := inn.StayCost(money("100"), stay(date(2024, time.January, 7), date(2024, time.January, 9)))

	if !cost.Equal(money("210.00")) {
		t.Errorf("expected 210.00, got %s", cost)
	}
}

func TestStayCost_TwoFullWeeks_BoundaryBumpsCancel(t *testing.T) {
	// GIVEN: Sun Jan 7 -> Sun Jan 21 2024: 14 nights, two full weeks,
	//        both endpoints on the boundary day
	// WHEN: computing the stay cost at base 50
	// THEN: multiplier is 14 + 2*0.2 + 0.1 - 0.1 = 14.4

	cost := inn.StayCost(money("50"), stay(date(2024, time.January, 7), date(2024, time.January, 21)))

	if !cost.Equal(money("720.00")) {
		t.Errorf("expected 720.00, got %s", cost)
	}
}

func TestStayCost_RoundsToTwoPlaces(t *testing.T) {
	// GIVEN: a fractional base price over a surcharged stay
	// WHEN: computing the stay cost
	// THEN: the result carries exactly two decimal places

	cost := inn.StayCost(money("99.99"), stay(date(2024, time.January, 5), date(2024, time.January, 7)))

	// 99.99 * 2.1 = 209.979 -> 209.98
	if !cost.Equal(money("209.98")) {
		t.Errorf("expected 209.98, got %s", cost)
	}
}

func TestStayCost_ScalesLinearlyWithBasePrice(t *testing.T) {
	s := stay(date(2024, time.March, 4), date(2024, time.March, 8))

	single := inn.StayCost(money("80"), s)
	double := inn.StayCost(money("160"), s)

	if !double.Equal(single.Mul(decimal.NewFromInt(2))) {
		t.Errorf("expected cost to scale linearly: %s vs %s", single, double)
	}
}

func TestStayCost_Deterministic(t *testing.T) {
	s := stay(date(2024, time.June, 1), date(2024, time.June, 15))

	first := inn.StayCost(money("123.45"), s)
	for i := 0; i < 5; i++ {
		if got := inn.StayCost(money("123.45"), s); !got.Equal(first) {
			t.Fatalf("cost not deterministic: %s vs %s", first, got)
		}
	}
}
