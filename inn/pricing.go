/*
pricing.go - The stay cost formula

PURPOSE:
  Computes the total cost of a stay from the room's nightly base price and
  the stay dates. The formula mirrors a deployed pricing rule exactly, so
  it must not be "improved":

    weeks     = full calendar weeks spanned, measured between each date's
                alignment to the preceding Sunday
    startBump = 0.1 if check-in falls on a Sunday
    endBump   = 0.1 if check-out falls on a Sunday
    cost      = basePrice * (nights + weeks*0.2 + startBump - endBump)

  rounded to 2 decimal places. Pure and deterministic: same inputs always
  yield the same cost, and cost scales linearly with basePrice.
*/
package inn

import "github.com/shopspring/decimal"

var (
	weekendSurcharge = decimal.RequireFromString("0.2")
	boundaryBump     = decimal.RequireFromString("0.1")
)

// StayCost returns the total price of a stay at the given nightly base
// price, rounded to 2 decimal places.
func StayCost(basePrice decimal.Decimal, stay StayPeriod) decimal.Decimal {
	nights := decimal.NewFromInt(int64(stay.Nights()))

	// Aligned Sundays are always a whole number of weeks apart.
	spanned := DaysBetween(stay.CheckIn.StartOfWeek(), stay.CheckOut.StartOfWeek())
	weeks := decimal.NewFromInt(int64(spanned / 7))

	multiplier := nights.Add(weeks.Mul(weekendSurcharge))
	if stay.CheckIn.IsWeekBoundary() {
		multiplier = multiplier.Add(boundaryBump)
	}
	if stay.CheckOut.IsWeekBoundary() {
		multiplier = multiplier.Sub(boundaryBump)
	}

	return basePrice.Mul(multiplier).Round(2)
}
