package inn

// HasConflict reports whether the candidate stay overlaps any existing
// reservation for the room. Two half-open intervals [a,b) and [c,d)
// conflict iff a < d AND b > c, so a check-out can share its date with
// the next guest's check-in.
//
// exclude skips one reservation code from the comparison set: when a
// reservation's own dates are being modified, it must not conflict with
// itself. Pass 0 to exclude nothing.
func HasConflict(roomCode RoomCode, stay StayPeriod, existing []Reservation, exclude ReservationCode) bool {
	_, found := FirstConflict(roomCode, stay, existing, exclude)
	return found
}

// FirstConflict returns the code of the first reservation blocking the
// candidate stay, if any.
func FirstConflict(roomCode RoomCode, stay StayPeriod, existing []Reservation, exclude ReservationCode) (ReservationCode, bool) {
	for _, r := range existing {
		if r.RoomCode != roomCode {
			continue
		}
		if exclude != 0 && r.Code == exclude {
			continue
		}
		if stay.Overlaps(r.Stay) {
			return r.Code, true
		}
	}
	return 0, false
}
