package reports

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/inn-engine/inn"
)

// popularityWindowDays is the trailing window the occupancy ratio is
// measured over.
const popularityWindowDays = 180

// RoomStatus pairs a room with its occupancy metadata for the rooms-and-
// rates listing.
type RoomStatus struct {
	Room       inn.Room
	Popularity decimal.Decimal // fraction of the trailing window occupied, rounded to 2 places

	// NextCheckIn is the next date the room becomes free: the earliest
	// future checkout with no back-to-back successor. Today when the room
	// has no future stays.
	NextCheckIn inn.Date

	// LastStayDays / LastStayCheckOut describe the most recently completed
	// stay. Zero values when the room has never been occupied.
	LastStayDays     int
	LastStayCheckOut inn.Date
}

// Popularity computes per-room occupancy metadata as of today, ordered by
// descending popularity.
func Popularity(today inn.Date, rooms []inn.Room, reservations []inn.Reservation) []RoomStatus {
	window := inn.NewStayPeriod(today.AddDays(-popularityWindowDays), today)

	byRoom := make(map[inn.RoomCode][]inn.Reservation)
	for _, r := range reservations {
		byRoom[r.RoomCode] = append(byRoom[r.RoomCode], r)
	}

	out := make([]RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		rs := byRoom[room.Code]
		status := RoomStatus{
			Room:        room,
			Popularity:  occupancyRatio(window, rs),
			NextCheckIn: nextFreeDate(today, rs),
		}
		if last, ok := lastCompletedStay(today, rs); ok {
			status.LastStayDays = last.Stay.Nights()
			status.LastStayCheckOut = last.Stay.CheckOut
		}
		out = append(out, status)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity.GreaterThan(out[j].Popularity)
	})
	return out
}

// occupancyRatio is occupied nights within the window divided by the
// window length, rounded to 2 places. Bounded in [0, 1]: stays cannot
// overlap, so occupied nights never exceed the window.
func occupancyRatio(window inn.StayPeriod, reservations []inn.Reservation) decimal.Decimal {
	nights := 0
	for _, r := range reservations {
		nights += r.Stay.OverlapNights(window)
	}
	return decimal.NewFromInt(int64(nights)).
		Div(decimal.NewFromInt(popularityWindowDays)).
		Round(2)
}

// nextFreeDate finds the earliest checkout on or after today that is not
// immediately followed by a back-to-back reservation for the same room.
// A checkout with a successor checking in that same day frees nothing.
func nextFreeDate(today inn.Date, reservations []inn.Reservation) inn.Date {
	next := inn.Date{}
	for _, r := range reservations {
		if r.Stay.CheckOut.Before(today) {
			continue
		}
		if hasContiguousSuccessor(r, reservations) {
			continue
		}
		if next.IsZero() || r.Stay.CheckOut.Before(next) {
			next = r.Stay.CheckOut
		}
	}
	if next.IsZero() {
		return today
	}
	return next
}

func hasContiguousSuccessor(r inn.Reservation, reservations []inn.Reservation) bool {
	for _, other := range reservations {
		if other.Code == r.Code {
			continue
		}
		if other.Stay.CheckIn.Equal(r.Stay.CheckOut) {
			return true
		}
	}
	return false
}

// lastCompletedStay returns the reservation with the latest checkout at or
// before today.
func lastCompletedStay(today inn.Date, reservations []inn.Reservation) (inn.Reservation, bool) {
	var last inn.Reservation
	found := false
	for _, r := range reservations {
		if r.Stay.CheckOut.After(today) {
			continue
		}
		if !found || r.Stay.CheckOut.After(last.Stay.CheckOut) {
			last = r
			found = true
		}
	}
	return last, found
}
