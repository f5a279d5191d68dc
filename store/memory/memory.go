// Package memory provides an in-memory inn.Store implementation
// (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/warp/inn-engine/inn"
)

// Store keeps rooms and reservations in maps. Mutations follow the same
// contract as the SQLite store: conflict check and insert under one lock,
// codes strictly increasing, nothing mutated on rejection.
type Store struct {
	mu           sync.RWMutex
	rooms        map[inn.RoomCode]inn.Room
	reservations map[inn.ReservationCode]inn.Reservation
}

var _ inn.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		rooms:        make(map[inn.RoomCode]inn.Room),
		reservations: make(map[inn.ReservationCode]inn.Reservation),
	}
}

// =============================================================================
// ROOM CATALOG
// =============================================================================

func (s *Store) SaveRoom(_ context.Context, room inn.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.Code == "" || room.MaxOccupancy < 1 {
		return &inn.ValidationError{Field: "room", Reason: "code required and capacity must be >= 1"}
	}
	s.rooms[room.Code] = room
	return nil
}

func (s *Store) Rooms(_ context.Context) ([]inn.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inn.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) Room(_ context.Context, code inn.RoomCode) (*inn.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, inn.ErrRoomNotFound
	}
	return &room, nil
}

func (s *Store) MaxCapacity(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	capacity := 0
	for _, room := range s.rooms {
		if room.MaxOccupancy > capacity {
			capacity = room.MaxOccupancy
		}
	}
	return capacity, nil
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func (s *Store) Create(_ context.Context, b inn.Booking) (inn.Reservation, error) {
	if err := b.Validate(); err != nil {
		return inn.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[b.RoomCode]
	if !ok {
		return inn.Reservation{}, inn.ErrRoomNotFound
	}
	if b.Occupants() > room.MaxOccupancy {
		return inn.Reservation{}, &inn.ValidationError{
			Field:  "occupants",
			Reason: fmt.Sprintf("%d occupants exceed room %s capacity %d", b.Occupants(), room.Code, room.MaxOccupancy),
		}
	}

	existing := s.snapshotLocked()
	if blocking, found := inn.FirstConflict(b.RoomCode, b.Stay, existing, 0); found {
		return inn.Reservation{}, &inn.ConflictError{
			RoomCode: b.RoomCode, Requested: b.Stay, ExistingCode: blocking,
		}
	}

	res := inn.Reservation{
		Code:      s.nextCodeLocked(),
		RoomCode:  b.RoomCode,
		Stay:      b.Stay,
		Rate:      b.Rate,
		LastName:  strings.ToUpper(b.LastName),
		FirstName: strings.ToUpper(b.FirstName),
		Adults:    b.Adults,
		Children:  b.Children,
	}
	s.reservations[res.Code] = res
	return res, nil
}

func (s *Store) Update(_ context.Context, code inn.ReservationCode, change inn.Change) error {
	if err := change.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reservations[code]
	if !ok {
		return inn.ErrReservationNotFound
	}

	updated := current
	switch change.Kind {
	case inn.ChangeFirstName:
		updated.FirstName = strings.ToUpper(change.Name)
	case inn.ChangeLastName:
		updated.LastName = strings.ToUpper(change.Name)
	case inn.ChangeAdults:
		updated.Adults = change.Count
	case inn.ChangeChildren:
		updated.Children = change.Count
	case inn.ChangeCheckIn, inn.ChangeCheckOut:
		if change.Kind == inn.ChangeCheckIn {
			updated.Stay.CheckIn = change.Date
		} else {
			updated.Stay.CheckOut = change.Date
		}
		if err := updated.Stay.Validate(); err != nil {
			return err
		}
		existing := s.snapshotLocked()
		if blocking, found := inn.FirstConflict(current.RoomCode, updated.Stay, existing, code); found {
			return &inn.ConflictError{
				RoomCode: current.RoomCode, Requested: updated.Stay, ExistingCode: blocking,
			}
		}
	}

	s.reservations[code] = updated
	return nil
}

func (s *Store) Cancel(_ context.Context, code inn.ReservationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[code]; !ok {
		return inn.ErrReservationNotFound
	}
	delete(s.reservations, code)
	return nil
}

func (s *Store) Reservation(_ context.Context, code inn.ReservationCode) (*inn.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.reservations[code]
	if !ok {
		return nil, inn.ErrReservationNotFound
	}
	return &res, nil
}

func (s *Store) Reservations(_ context.Context) ([]inn.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(), nil
}

func (s *Store) FindMatching(_ context.Context, f inn.ReservationFilter) ([]inn.ReservationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []inn.ReservationDetail
	for _, res := range s.snapshotLocked() {
		if !matches(res, f) {
			continue
		}
		room := s.rooms[res.RoomCode]
		out = append(out, inn.ReservationDetail{
			Reservation:  res,
			RoomName:     room.Name,
			MaxOccupancy: room.MaxOccupancy,
		})
	}
	return out, nil
}

func matches(r inn.Reservation, f inn.ReservationFilter) bool {
	if !inn.MatchesAny(f.FirstName) && !strings.EqualFold(f.FirstName, r.FirstName) {
		return false
	}
	if !inn.MatchesAny(f.LastName) && !strings.EqualFold(f.LastName, r.LastName) {
		return false
	}
	if !f.CheckIn.IsZero() && !f.CheckIn.Equal(r.Stay.CheckIn) {
		return false
	}
	if !f.CheckOut.IsZero() && !f.CheckOut.Equal(r.Stay.CheckOut) {
		return false
	}
	if !inn.MatchesAny(f.RoomCode) && !strings.EqualFold(f.RoomCode, string(r.RoomCode)) {
		return false
	}
	if f.Code != 0 && f.Code != r.Code {
		return false
	}
	return true
}

// snapshotLocked returns reservations sorted by code. Callers hold s.mu.
func (s *Store) snapshotLocked() []inn.Reservation {
	out := make([]inn.Reservation, 0, len(s.reservations))
	for _, res := range s.reservations {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// nextCodeLocked assigns max+1. Cancellations may free a code for reuse;
// codes stay strictly increasing while reservations exist, matching the
// SQLite store.
func (s *Store) nextCodeLocked() inn.ReservationCode {
	var max inn.ReservationCode
	for code := range s.reservations {
		if code > max {
			max = code
		}
	}
	return max + 1
}
