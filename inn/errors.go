/*
errors.go - Error taxonomy for the reservation core

PURPOSE:
  All error types in one place. Three kinds matter to callers:

  1. Validation errors - malformed input, rejected before storage access
  2. Conflict errors   - an overlapping reservation exists; nothing mutated
  3. Storage errors    - persistence failure; in-flight transaction rolled back

USAGE:
  The presentation layer classifies with the helpers:

    if inn.IsConflict(err) { ... 409 ... }
    if inn.IsValidation(err) { ... 400 ... }
    if inn.IsNotFound(err) { ... 404 ... }
*/
package inn

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConflict is returned when a requested or modified stay overlaps an
	// existing reservation for the same room.
	ErrConflict = errors.New("reservation conflict")

	// ErrValidation is returned for malformed input, before storage access.
	ErrValidation = errors.New("invalid request")

	// ErrStorage is returned when the store cannot complete a transaction.
	// The in-flight transaction has been rolled back; nothing was mutated.
	ErrStorage = errors.New("storage failure")

	// ErrRoomNotFound is returned when a referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrReservationNotFound is returned when a reservation code is unknown.
	ErrReservationNotFound = errors.New("reservation not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConflictError reports which existing reservation blocks the request.
type ConflictError struct {
	RoomCode     RoomCode
	Requested    StayPeriod
	ExistingCode ReservationCode
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s: requested %s overlaps reservation %d",
		e.RoomCode, e.Requested, e.ExistingCode)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError reports which input field was malformed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StorageError wraps an underlying persistence failure. The failed
// operation's transaction has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConflict reports whether the error is a booking conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether the error is due to invalid client input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether the error indicates a missing room or reservation.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrReservationNotFound)
}
