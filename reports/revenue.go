/*
Package reports computes the inn's read-only reports.

PURPOSE:
  Revenue proration and room popularity, as pure functions over a snapshot
  of rooms and reservations. Extracted from storage so the same logic runs
  against an in-memory fixture in tests.

KEY CONCEPTS (revenue.go):
  A reservation's rate is nightly. Its revenue is prorated across the
  calendar months its interval touches, weighted by nights in each month.
  Cells are exact decimals so each room's monthly cells sum precisely to
  its annual total, and the "All Rooms" row is the exact column-wise sum.
*/
package reports

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inn-engine/inn"
)

// RevenueRow is one room's revenue for a year, one cell per month.
type RevenueRow struct {
	RoomCode string
	RoomName string
	Months   [12]decimal.Decimal
	Total    decimal.Decimal
}

// RevenueReport is the per-room monthly revenue table for one calendar
// year, with an "All Rooms" summary row.
type RevenueReport struct {
	Year     int
	Rooms    []RevenueRow
	AllRooms RevenueRow
}

// Revenue prorates each reservation's rate across the months of the given
// year. Only reservations whose interval touches the year are considered;
// rooms appear in catalog order.
func Revenue(year int, rooms []inn.Room, reservations []inn.Reservation) RevenueReport {
	report := RevenueReport{
		Year:     year,
		AllRooms: RevenueRow{RoomCode: "All Rooms", RoomName: "All Rooms"},
	}

	byRoom := make(map[inn.RoomCode][]inn.Reservation)
	for _, r := range reservations {
		if r.Stay.CheckIn.Year() > year || r.Stay.CheckOut.Year() < year {
			continue
		}
		byRoom[r.RoomCode] = append(byRoom[r.RoomCode], r)
	}

	for _, room := range rooms {
		row := RevenueRow{RoomCode: string(room.Code), RoomName: room.Name}
		for _, r := range byRoom[room.Code] {
			for m := time.January; m <= time.December; m++ {
				nights := r.Stay.OverlapNights(inn.MonthPeriod(year, m))
				if nights == 0 {
					continue
				}
				cell := r.Rate.Mul(decimal.NewFromInt(int64(nights)))
				row.Months[m-1] = row.Months[m-1].Add(cell)
			}
		}
		for m := range row.Months {
			row.Total = row.Total.Add(row.Months[m])
			report.AllRooms.Months[m] = report.AllRooms.Months[m].Add(row.Months[m])
		}
		report.AllRooms.Total = report.AllRooms.Total.Add(row.Total)
		report.Rooms = append(report.Rooms, row)
	}

	return report
}
