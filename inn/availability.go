/*
availability.go - Availability search and similarity fallback

PURPOSE:
  Ranks candidate rooms for a stay request. Pure: operates on a snapshot
  of rooms and reservations, never touches storage, has no side effects.

SEARCH:
  A room qualifies exactly when
    - requested occupants fit its capacity,
    - its code matches the request (or the request says "any"),
    - its bed type matches the request (or "any"),
    - the requested interval conflicts with none of its reservations.

FALLBACK:
  When no room qualifies exactly, the room-code and bed-type constraints
  are dropped entirely and the remaining capacity-eligible, conflict-free
  rooms are ranked: exact room-code matches first, then exact bed-type
  matches, relative order preserved otherwise. The fallback always uses
  the caller's actual dates and occupancy.

NOTE:
  Booking is still re-validated inside the store's transaction; a search
  result is a quote, not a hold.
*/
package inn

import (
	"sort"
	"strings"
)

// SearchAvailability returns bookable rooms for the criteria, each with
// the computed cost of the requested stay. When no room matches the
// preferences exactly, it falls back to a similarity search; Similar is
// true on the result when that happened.
func SearchAvailability(c SearchCriteria, rooms []Room, reservations []Reservation) SearchResult {
	exact := collectCandidates(c, rooms, reservations, false)
	if len(exact) > 0 {
		return SearchResult{Candidates: exact}
	}
	return SearchResult{Candidates: similarRooms(c, rooms, reservations), Similar: true}
}

// SearchResult is the outcome of an availability search.
type SearchResult struct {
	Candidates []Candidate
	Similar    bool // true when the similarity fallback produced the list
}

func collectCandidates(c SearchCriteria, rooms []Room, reservations []Reservation, relaxed bool) []Candidate {
	var out []Candidate
	for _, room := range rooms {
		if c.Occupants() > room.MaxOccupancy {
			continue
		}
		if !relaxed {
			if !MatchesAny(c.RoomCode) && !strings.EqualFold(c.RoomCode, string(room.Code)) {
				continue
			}
			if !MatchesAny(c.BedType) && !strings.EqualFold(c.BedType, room.BedType) {
				continue
			}
		}
		if HasConflict(room.Code, c.Stay, reservations, 0) {
			continue
		}
		out = append(out, Candidate{Room: room, Cost: StayCost(room.BasePrice, c.Stay)})
	}
	return out
}

// similarRooms relaxes the code and bed-type constraints but keeps the
// caller's real dates and occupancy, then ranks by closeness to the
// original preferences.
func similarRooms(c SearchCriteria, rooms []Room, reservations []Reservation) []Candidate {
	candidates := collectCandidates(c, rooms, reservations, true)

	rank := func(cand Candidate) int {
		r := 0
		if !MatchesAny(c.RoomCode) && strings.EqualFold(c.RoomCode, string(cand.Room.Code)) {
			r -= 2
		}
		if !MatchesAny(c.BedType) && strings.EqualFold(c.BedType, cand.Room.BedType) {
			r--
		}
		return r
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return rank(candidates[i]) < rank(candidates[j])
	})
	return candidates
}
