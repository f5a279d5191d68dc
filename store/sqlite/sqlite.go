/*
Package sqlite provides the SQLite-backed reservation store.

PURPOSE:
  Implements inn.Store using SQLite. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  rooms:        Catalog reference data, maintained externally
  reservations: Booked stays, keyed by a monotonically assigned code

ATOMIC CODE ASSIGNMENT:
  The next reservation code is COALESCE(MAX(code),0)+1, computed and
  inserted inside the same transaction while the store's write mutex is
  held. Two interleaved Create calls can never read the same maximum, so
  codes are unique and strictly increasing; a failed insert rolls back and
  does not advance the counter.

CONFLICT ISOLATION:
  The overlap check runs inside the same mutex-guarded transaction as the
  insert or date update. The check-then-act window of a separate
  availability search is therefore closed: a booking that lost the race is
  rejected with a ConflictError, never committed as a double-booking.

CONCURRENCY:
  sync.RWMutex: concurrent readers, single writer. SQLite is opened with
  WAL so readers don't block the writer at the database level either.

USAGE:
  store, err := sqlite.New("./data/inn.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - inn/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/inn-engine/inn"
)

// Store implements inn.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ inn.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Rooms (reference data, read-only to the core)
	CREATE TABLE IF NOT EXISTS rooms (
		room_code TEXT PRIMARY KEY,
		room_name TEXT NOT NULL,
		bed_type TEXT NOT NULL,
		max_occupancy INTEGER NOT NULL CHECK (max_occupancy >= 1),
		base_price TEXT NOT NULL
	);

	-- Reservations, keyed by monotonically assigned integer code.
	-- Dates are ISO (YYYY-MM-DD); the interval is half-open.
	CREATE TABLE IF NOT EXISTS reservations (
		code INTEGER PRIMARY KEY,
		room_code TEXT NOT NULL REFERENCES rooms(room_code),
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		rate TEXT NOT NULL,
		last_name TEXT NOT NULL,
		first_name TEXT NOT NULL,
		adults INTEGER NOT NULL CHECK (adults >= 0),
		children INTEGER NOT NULL CHECK (children >= 0),
		created_at TEXT NOT NULL,
		CHECK (check_in < check_out)
	);

	-- Overlap checks and per-room listings (hot path)
	CREATE INDEX IF NOT EXISTS idx_reservations_room_dates
		ON reservations(room_code, check_in, check_out);

	-- Popularity / next-check-in scans
	CREATE INDEX IF NOT EXISTS idx_reservations_check_out
		ON reservations(check_out);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROOM CATALOG
// =============================================================================

// SaveRoom upserts a room. Called by the external inventory process only.
func (s *Store) SaveRoom(ctx context.Context, room inn.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.Code == "" || room.MaxOccupancy < 1 {
		return &inn.ValidationError{Field: "room", Reason: "code required and capacity must be >= 1"}
	}

	query := `
		INSERT INTO rooms (room_code, room_name, bed_type, max_occupancy, base_price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(room_code) DO UPDATE SET
			room_name = excluded.room_name,
			bed_type = excluded.bed_type,
			max_occupancy = excluded.max_occupancy,
			base_price = excluded.base_price
	`

	_, err := s.db.ExecContext(ctx, query,
		room.Code, room.Name, room.BedType, room.MaxOccupancy, room.BasePrice.String(),
	)
	if err != nil {
		return &inn.StorageError{Op: "save room", Err: err}
	}
	return nil
}

// Rooms returns the full catalog.
func (s *Store) Rooms(ctx context.Context) ([]inn.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT room_code, room_name, bed_type, max_occupancy, base_price FROM rooms ORDER BY room_code",
	)
	if err != nil {
		return nil, &inn.StorageError{Op: "list rooms", Err: err}
	}
	defer rows.Close()

	var rooms []inn.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// Room returns one room, or ErrRoomNotFound.
func (s *Store) Room(ctx context.Context, code inn.RoomCode) (*inn.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryRoom(ctx, s.db, code)
}

func queryRoom(ctx context.Context, db querier, code inn.RoomCode) (*inn.Room, error) {
	var room inn.Room
	var basePrice string

	err := db.QueryRowContext(ctx,
		"SELECT room_code, room_name, bed_type, max_occupancy, base_price FROM rooms WHERE room_code = ?",
		code,
	).Scan(&room.Code, &room.Name, &room.BedType, &room.MaxOccupancy, &basePrice)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, inn.ErrRoomNotFound
	}
	if err != nil {
		return nil, &inn.StorageError{Op: "get room", Err: err}
	}

	room.BasePrice = mustDecimal(basePrice)
	return &room, nil
}

// MaxCapacity returns the largest room capacity, 0 for an empty catalog.
func (s *Store) MaxCapacity(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var capacity int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(max_occupancy), 0) FROM rooms",
	).Scan(&capacity)
	if err != nil {
		return 0, &inn.StorageError{Op: "max capacity", Err: err}
	}
	return capacity, nil
}

// =============================================================================
// RESERVATION MUTATIONS
// =============================================================================

// Create books a stay. The conflict check, the code assignment and the
// insert run inside one transaction while the write mutex is held; on any
// failure the transaction rolls back and the code counter is untouched.
func (s *Store) Create(ctx context.Context, b inn.Booking) (inn.Reservation, error) {
	if err := b.Validate(); err != nil {
		return inn.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inn.Reservation{}, &inn.StorageError{Op: "begin create", Err: err}
	}
	defer tx.Rollback()

	room, err := queryRoom(ctx, tx, b.RoomCode)
	if err != nil {
		return inn.Reservation{}, err
	}
	if b.Occupants() > room.MaxOccupancy {
		return inn.Reservation{}, &inn.ValidationError{
			Field:  "occupants",
			Reason: fmt.Sprintf("%d occupants exceed room %s capacity %d", b.Occupants(), room.Code, room.MaxOccupancy),
		}
	}

	if blocking, found, err := findOverlap(ctx, tx, b.RoomCode, b.Stay, 0); err != nil {
		return inn.Reservation{}, err
	} else if found {
		return inn.Reservation{}, &inn.ConflictError{
			RoomCode: b.RoomCode, Requested: b.Stay, ExistingCode: blocking,
		}
	}

	// Next code, computed and applied within the same transaction.
	var next int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(code), 0) + 1 FROM reservations",
	).Scan(&next); err != nil {
		return inn.Reservation{}, &inn.StorageError{Op: "assign code", Err: err}
	}

	res := inn.Reservation{
		Code:      inn.ReservationCode(next),
		RoomCode:  b.RoomCode,
		Stay:      b.Stay,
		Rate:      b.Rate,
		LastName:  strings.ToUpper(b.LastName),
		FirstName: strings.ToUpper(b.FirstName),
		Adults:    b.Adults,
		Children:  b.Children,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reservations
		(code, room_code, check_in, check_out, rate, last_name, first_name, adults, children, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, DATE('now'))`,
		res.Code, res.RoomCode,
		res.Stay.CheckIn.String(), res.Stay.CheckOut.String(),
		res.Rate.String(), res.LastName, res.FirstName, res.Adults, res.Children,
	)
	if err != nil {
		return inn.Reservation{}, &inn.StorageError{Op: "insert reservation", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return inn.Reservation{}, &inn.StorageError{Op: "commit create", Err: err}
	}
	return res, nil
}

// Update applies one tagged field change. Date changes re-run the overlap
// check against the room's other reservations, excluding the reservation
// itself; on conflict the transaction rolls back with nothing mutated.
// Each successful update commits independently.
func (s *Store) Update(ctx context.Context, code inn.ReservationCode, change inn.Change) error {
	if err := change.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &inn.StorageError{Op: "begin update", Err: err}
	}
	defer tx.Rollback()

	current, err := queryReservation(ctx, tx, code)
	if err != nil {
		return err
	}

	var column string
	var value any
	switch change.Kind {
	case inn.ChangeFirstName:
		column, value = "first_name", strings.ToUpper(change.Name)
	case inn.ChangeLastName:
		column, value = "last_name", strings.ToUpper(change.Name)
	case inn.ChangeAdults:
		column, value = "adults", change.Count
	case inn.ChangeChildren:
		column, value = "children", change.Count
	case inn.ChangeCheckIn, inn.ChangeCheckOut:
		stay := current.Stay
		if change.Kind == inn.ChangeCheckIn {
			column, stay.CheckIn = "check_in", change.Date
		} else {
			column, stay.CheckOut = "check_out", change.Date
		}
		if err := stay.Validate(); err != nil {
			return err
		}
		if blocking, found, err := findOverlap(ctx, tx, current.RoomCode, stay, code); err != nil {
			return err
		} else if found {
			return &inn.ConflictError{
				RoomCode: current.RoomCode, Requested: stay, ExistingCode: blocking,
			}
		}
		value = change.Date.String()
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE reservations SET "+column+" = ? WHERE code = ?", value, code,
	); err != nil {
		return &inn.StorageError{Op: "update reservation", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &inn.StorageError{Op: "commit update", Err: err}
	}
	return nil
}

// Cancel deletes the reservation.
func (s *Store) Cancel(ctx context.Context, code inn.ReservationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &inn.StorageError{Op: "begin cancel", Err: err}
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE code = ?", code)
	if err != nil {
		return &inn.StorageError{Op: "delete reservation", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &inn.StorageError{Op: "delete reservation", Err: err}
	}
	if affected == 0 {
		return inn.ErrReservationNotFound
	}

	if err := tx.Commit(); err != nil {
		return &inn.StorageError{Op: "commit cancel", Err: err}
	}
	return nil
}

// findOverlap looks for a reservation blocking the candidate stay, inside
// the caller's transaction. Half-open intervals: a < d AND b > c.
func findOverlap(ctx context.Context, tx *sql.Tx, room inn.RoomCode, stay inn.StayPeriod, exclude inn.ReservationCode) (inn.ReservationCode, bool, error) {
	var blocking inn.ReservationCode
	err := tx.QueryRowContext(ctx, `
		SELECT code FROM reservations
		WHERE room_code = ? AND code <> ? AND check_in < ? AND check_out > ?
		LIMIT 1`,
		room, exclude, stay.CheckOut.String(), stay.CheckIn.String(),
	).Scan(&blocking)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &inn.StorageError{Op: "overlap check", Err: err}
	}
	return blocking, true, nil
}

// =============================================================================
// RESERVATION READS
// =============================================================================

const reservationColumns = `code, room_code, check_in, check_out, rate, last_name, first_name, adults, children`

// Reservation returns one reservation, or ErrReservationNotFound.
func (s *Store) Reservation(ctx context.Context, code inn.ReservationCode) (*inn.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryReservation(ctx, s.db, code)
}

func queryReservation(ctx context.Context, db querier, code inn.ReservationCode) (*inn.Reservation, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE code = ?", code,
	)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inn.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Reservations returns a snapshot of every reservation.
func (s *Store) Reservations(ctx context.Context) ([]inn.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations ORDER BY code",
	)
	if err != nil {
		return nil, &inn.StorageError{Op: "list reservations", Err: err}
	}
	defer rows.Close()

	var out []inn.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// FindMatching returns reservations matching the filter, joined with room
// display data. Each filter field is matched exactly when supplied and
// ignored when zero-valued or "any".
func (s *Store) FindMatching(ctx context.Context, f inn.ReservationFilter) ([]inn.ReservationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT r.code, r.room_code, r.check_in, r.check_out, r.rate,
		       r.last_name, r.first_name, r.adults, r.children,
		       rooms.room_name, rooms.max_occupancy
		FROM reservations r JOIN rooms ON r.room_code = rooms.room_code
	`
	var conds []string
	var args []any

	if !inn.MatchesAny(f.FirstName) {
		conds = append(conds, "r.first_name = ?")
		args = append(args, strings.ToUpper(f.FirstName))
	}
	if !inn.MatchesAny(f.LastName) {
		conds = append(conds, "r.last_name = ?")
		args = append(args, strings.ToUpper(f.LastName))
	}
	if !f.CheckIn.IsZero() {
		conds = append(conds, "r.check_in = ?")
		args = append(args, f.CheckIn.String())
	}
	if !f.CheckOut.IsZero() {
		conds = append(conds, "r.check_out = ?")
		args = append(args, f.CheckOut.String())
	}
	if !inn.MatchesAny(f.RoomCode) {
		conds = append(conds, "r.room_code = ? COLLATE NOCASE")
		args = append(args, f.RoomCode)
	}
	if f.Code != 0 {
		conds = append(conds, "r.code = ?")
		args = append(args, f.Code)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.code"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &inn.StorageError{Op: "find reservations", Err: err}
	}
	defer rows.Close()

	var out []inn.ReservationDetail
	for rows.Next() {
		var d inn.ReservationDetail
		var checkIn, checkOut, rate string
		if err := rows.Scan(
			&d.Code, &d.RoomCode, &checkIn, &checkOut, &rate,
			&d.LastName, &d.FirstName, &d.Adults, &d.Children,
			&d.RoomName, &d.MaxOccupancy,
		); err != nil {
			return nil, &inn.StorageError{Op: "scan reservation", Err: err}
		}
		d.Stay, err = parseStay(checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		d.Rate = mustDecimal(rate)
		out = append(out, d)
	}
	return out, rows.Err()
}

// =============================================================================
// SCANNING HELPERS
// =============================================================================

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (inn.Room, error) {
	var room inn.Room
	var basePrice string
	if err := row.Scan(&room.Code, &room.Name, &room.BedType, &room.MaxOccupancy, &basePrice); err != nil {
		return room, &inn.StorageError{Op: "scan room", Err: err}
	}
	room.BasePrice = mustDecimal(basePrice)
	return room, nil
}

func scanReservation(row rowScanner) (inn.Reservation, error) {
	var res inn.Reservation
	var checkIn, checkOut, rate string
	err := row.Scan(
		&res.Code, &res.RoomCode, &checkIn, &checkOut, &rate,
		&res.LastName, &res.FirstName, &res.Adults, &res.Children,
	)
	if err != nil {
		return res, err
	}
	res.Stay, err = parseStay(checkIn, checkOut)
	if err != nil {
		return res, err
	}
	res.Rate = mustDecimal(rate)
	return res, nil
}

func parseStay(checkIn, checkOut string) (inn.StayPeriod, error) {
	in, err := inn.ParseDate(checkIn)
	if err != nil {
		return inn.StayPeriod{}, &inn.StorageError{Op: "parse check-in", Err: err}
	}
	out, err := inn.ParseDate(checkOut)
	if err != nil {
		return inn.StayPeriod{}, &inn.StorageError{Op: "parse check-out", Err: err}
	}
	return inn.NewStayPeriod(in, out), nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
