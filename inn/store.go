package inn

import "context"

// Store is the persistence contract for the reservation core.
//
// Mutations (Create, Update, Cancel) are all-or-nothing: either fully
// applied and durable, or fully discarded with the error describing why.
// Create and date-changing Update hold the conflict check and the write
// inside one isolation boundary, so two concurrent bookings for the same
// room and dates can never both commit.
//
// Reads return consistent snapshots and may run concurrently with each
// other; they must not block mutations indefinitely.
type Store interface {
	// Rooms returns the full catalog.
	Rooms(ctx context.Context) ([]Room, error)

	// Room returns one room, or ErrRoomNotFound.
	Room(ctx context.Context, code RoomCode) (*Room, error)

	// SaveRoom upserts catalog reference data. Rooms are maintained by an
	// external inventory process; the core itself never calls this.
	SaveRoom(ctx context.Context, room Room) error

	// MaxCapacity returns the largest MaxOccupancy across all rooms
	// (0 for an empty catalog). Callers use it to pre-reject oversized
	// requests before searching.
	MaxCapacity(ctx context.Context) (int, error)

	// Reservations returns a snapshot of every reservation.
	Reservations(ctx context.Context) ([]Reservation, error)

	// Reservation returns one reservation, or ErrReservationNotFound.
	Reservation(ctx context.Context, code ReservationCode) (*Reservation, error)

	// Create validates the booking, re-checks for conflicts, assigns the
	// next reservation code atomically and persists the record. The code
	// counter does not advance on failure.
	Create(ctx context.Context, b Booking) (Reservation, error)

	// Update applies one tagged field change. Date changes are re-checked
	// against the room's other reservations, excluding the reservation
	// itself; on conflict nothing is mutated.
	Update(ctx context.Context, code ReservationCode, change Change) error

	// Cancel deletes the reservation, or returns ErrReservationNotFound.
	Cancel(ctx context.Context, code ReservationCode) error

	// FindMatching returns reservations matching the filter, joined with
	// room display data. Zero-valued filter fields are ignored.
	FindMatching(ctx context.Context, f ReservationFilter) ([]ReservationDetail, error)
}
