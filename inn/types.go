/*
Package inn provides the core reservation domain for a single inn.

PURPOSE:
  This package contains the pure domain types and algorithms: room and
  reservation records, the nightly pricing formula, the half-open interval
  overlap predicate, and the availability search with its similarity
  fallback. Nothing in this package touches storage or I/O.

KEY CONCEPTS IN THIS FILE (types.go):
  - Room: immutable reference data (capacity, bed type, base price)
  - Reservation: a booked stay with a locked-in nightly rate
  - Booking: the input to ReservationStore.Create
  - Change: a tagged single-field update (no stringly-typed dispatch)
  - SearchCriteria / ReservationFilter: query inputs with "any" wildcards

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, never float64
  2. Half-open stays: [check-in, check-out) so same-day turnover works
  3. Purity: pricing, overlap and search are functions over plain values,
     independently testable against in-memory fixtures

SEE ALSO:
  - date.go: Date and StayPeriod arithmetic
  - pricing.go: the stay cost formula
  - availability.go: search and similarity fallback
  - store.go: the persistence interface
*/
package inn

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// RoomCode identifies a room (e.g. "AOB", "CAS").
type RoomCode string

// ReservationCode is the unique, monotonically assigned booking number.
type ReservationCode int64

// Any is the wildcard accepted by search and filter fields.
const Any = "any"

// MatchesAny reports whether a criteria field means "no preference".
// Blank and any casing of "any" both qualify.
func MatchesAny(s string) bool {
	return s == "" || strings.EqualFold(s, Any)
}

// =============================================================================
// ROOM - Immutable reference data
// =============================================================================

// Room is reference data maintained by an external inventory process.
// The core reads it, never mutates it.
type Room struct {
	Code         RoomCode
	Name         string
	BedType      string
	MaxOccupancy int
	BasePrice    decimal.Decimal // nightly base price
}

// =============================================================================
// RESERVATION - A booked stay
// =============================================================================

// Reservation is a booked stay. Rate is the nightly price locked at booking
// time; later reads never recompute it. Guest names are stored upper-cased.
type Reservation struct {
	Code      ReservationCode
	RoomCode  RoomCode
	Stay      StayPeriod
	Rate      decimal.Decimal
	LastName  string
	FirstName string
	Adults    int
	Children  int
}

// Occupants returns the total headcount for the stay.
func (r Reservation) Occupants() int { return r.Adults + r.Children }

// ReservationDetail joins a reservation with its room's display data.
type ReservationDetail struct {
	Reservation
	RoomName     string
	MaxOccupancy int
}

// =============================================================================
// BOOKING - Input to ReservationStore.Create
// =============================================================================

// Booking is a request to create a reservation. Rate is the nightly price
// the guest was quoted; the store persists it as-is.
type Booking struct {
	RoomCode  RoomCode
	Stay      StayPeriod
	Rate      decimal.Decimal
	LastName  string
	FirstName string
	Adults    int
	Children  int
}

// Occupants returns the total headcount for the booking.
func (b Booking) Occupants() int { return b.Adults + b.Children }

// Validate rejects malformed bookings before any storage access.
// Room capacity is checked by the store, which knows the room.
func (b Booking) Validate() error {
	if b.RoomCode == "" {
		return &ValidationError{Field: "roomCode", Reason: "required"}
	}
	if err := b.Stay.Validate(); err != nil {
		return err
	}
	if b.Adults < 0 || b.Children < 0 {
		return &ValidationError{Field: "occupants", Reason: "counts must be non-negative"}
	}
	if b.Occupants() < 1 {
		return &ValidationError{Field: "occupants", Reason: "at least one occupant required"}
	}
	if b.Rate.IsNegative() {
		return &ValidationError{Field: "rate", Reason: "must not be negative"}
	}
	return nil
}

// =============================================================================
// CHANGE - Tagged single-field update
// =============================================================================

// ChangeKind enumerates the reservation fields that can be updated.
type ChangeKind string

const (
	ChangeFirstName ChangeKind = "firstName"
	ChangeLastName  ChangeKind = "lastName"
	ChangeCheckIn   ChangeKind = "checkIn"
	ChangeCheckOut  ChangeKind = "checkOut"
	ChangeAdults    ChangeKind = "numAdults"
	ChangeChildren  ChangeKind = "numChildren"
)

// Change is a tagged single-field update. Exactly one of Name, Date or
// Count is meaningful, selected by Kind. Use the constructors.
type Change struct {
	Kind  ChangeKind
	Name  string
	Date  Date
	Count int
}

func FirstNameTo(name string) Change { return Change{Kind: ChangeFirstName, Name: name} }
func LastNameTo(name string) Change  { return Change{Kind: ChangeLastName, Name: name} }
func CheckInTo(d Date) Change        { return Change{Kind: ChangeCheckIn, Date: d} }
func CheckOutTo(d Date) Change       { return Change{Kind: ChangeCheckOut, Date: d} }
func AdultsTo(n int) Change          { return Change{Kind: ChangeAdults, Count: n} }
func ChildrenTo(n int) Change        { return Change{Kind: ChangeChildren, Count: n} }

// IsDateChange reports whether applying the change moves the stay interval,
// which requires an overlap re-check against the room's other reservations.
func (c Change) IsDateChange() bool {
	return c.Kind == ChangeCheckIn || c.Kind == ChangeCheckOut
}

// Validate rejects malformed changes at the boundary, before the store.
func (c Change) Validate() error {
	switch c.Kind {
	case ChangeFirstName, ChangeLastName:
		if strings.TrimSpace(c.Name) == "" {
			return &ValidationError{Field: string(c.Kind), Reason: "must not be blank"}
		}
	case ChangeCheckIn, ChangeCheckOut:
		if c.Date.IsZero() {
			return &ValidationError{Field: string(c.Kind), Reason: "malformed date"}
		}
	case ChangeAdults, ChangeChildren:
		if c.Count < 0 {
			return &ValidationError{Field: string(c.Kind), Reason: "must be non-negative"}
		}
	default:
		return &ValidationError{Field: "field", Reason: "unknown field " + string(c.Kind)}
	}
	return nil
}

// ParseChange converts the wire-level (field, value) pair into a typed
// Change. This is the only place stringly-typed field selection exists.
func ParseChange(field, value string) (Change, error) {
	switch ChangeKind(field) {
	case ChangeFirstName:
		return FirstNameTo(value), nil
	case ChangeLastName:
		return LastNameTo(value), nil
	case ChangeCheckIn:
		d, err := ParseDate(value)
		if err != nil {
			return Change{}, &ValidationError{Field: field, Reason: "malformed date " + value}
		}
		return CheckInTo(d), nil
	case ChangeCheckOut:
		d, err := ParseDate(value)
		if err != nil {
			return Change{}, &ValidationError{Field: field, Reason: "malformed date " + value}
		}
		return CheckOutTo(d), nil
	case ChangeAdults:
		n, err := parseCount(value)
		if err != nil {
			return Change{}, &ValidationError{Field: field, Reason: "malformed count " + value}
		}
		return AdultsTo(n), nil
	case ChangeChildren:
		n, err := parseCount(value)
		if err != nil {
			return Change{}, &ValidationError{Field: field, Reason: "malformed count " + value}
		}
		return ChildrenTo(n), nil
	default:
		return Change{}, &ValidationError{Field: "field", Reason: "unknown field " + field}
	}
}

// =============================================================================
// QUERY INPUTS
// =============================================================================

// SearchCriteria describes an availability request. RoomCode and BedType
// accept the "any" wildcard (or blank) for no preference.
type SearchCriteria struct {
	RoomCode string
	BedType  string
	Stay     StayPeriod
	Adults   int
	Children int
}

// Occupants returns the requested headcount.
func (c SearchCriteria) Occupants() int { return c.Adults + c.Children }

// Validate rejects malformed criteria before any search runs.
func (c SearchCriteria) Validate() error {
	if err := c.Stay.Validate(); err != nil {
		return err
	}
	if c.Adults < 0 || c.Children < 0 {
		return &ValidationError{Field: "occupants", Reason: "counts must be non-negative"}
	}
	if c.Occupants() < 1 {
		return &ValidationError{Field: "occupants", Reason: "at least one occupant required"}
	}
	return nil
}

// Candidate is one search result: a bookable room and the cost of the
// requested stay in it.
type Candidate struct {
	Room Room
	Cost decimal.Decimal
}

// ReservationFilter selects reservations for read-only lookup. Zero values
// mean "ignored"; name and room fields also accept the "any" wildcard.
type ReservationFilter struct {
	FirstName string
	LastName  string
	CheckIn   Date
	CheckOut  Date
	RoomCode  string
	Code      ReservationCode
}

func parseCount(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
