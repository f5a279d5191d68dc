/*
handlers.go - HTTP API handlers for the inn reservation engine

PURPOSE:
  Exposes the reservation core via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic. The core itself never
  prints or writes responses.

ENDPOINTS:
  Catalog:
    GET    /api/rooms                 Rooms and rates with popularity metadata
    POST   /api/rooms                 Upsert a room (inventory process)
    GET    /api/capacity              Largest room capacity

  Availability:
    GET    /api/availability          Search with similarity fallback

  Reservations:
    POST   /api/reservations          Book a stay
    GET    /api/reservations          Find matching reservations
    PATCH  /api/reservations/{code}   Change one field
    DELETE /api/reservations/{code}   Cancel

  Reports:
    GET    /api/reports/revenue       Monthly revenue per room, current year

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown room or reservation code
  - 409: Booking conflict (overlapping stay)
  - 500: Storage errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/inn-engine/inn"
	"github.com/warp/inn-engine/reports"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store inn.Store

	// now is injectable for tests; defaults to inn.Today.
	now func() inn.Date
}

// NewHandler creates a new handler backed by the given store.
func NewHandler(store inn.Store) *Handler {
	return &Handler{Store: store, now: inn.Today}
}

// =============================================================================
// CATALOG
// =============================================================================

// ListRooms returns rooms and rates joined with popularity, next-check-in
// and last-stay metadata, ordered by descending popularity.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rooms, err := h.Store.Rooms(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	reservations, err := h.Store.Reservations(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	statuses := reports.Popularity(h.now(), rooms, reservations)
	out := make([]RoomStatusDTO, len(statuses))
	for i, s := range statuses {
		out[i] = toRoomStatusDTO(s)
	}
	writeJSON(w, http.StatusOK, out)
}

// UpsertRoom creates or updates catalog reference data.
func (h *Handler) UpsertRoom(w http.ResponseWriter, r *http.Request) {
	var req UpsertRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &inn.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		writeError(w, &inn.ValidationError{Field: "base_price", Reason: "malformed decimal"})
		return
	}

	room := inn.Room{
		Code:         inn.RoomCode(req.Code),
		Name:         req.Name,
		BedType:      req.BedType,
		MaxOccupancy: req.MaxOccupancy,
		BasePrice:    basePrice,
	}
	if err := h.Store.SaveRoom(r.Context(), room); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(room))
}

// MaxCapacity lets callers pre-reject oversized requests before searching.
func (h *Handler) MaxCapacity(w http.ResponseWriter, r *http.Request) {
	capacity, err := h.Store.MaxCapacity(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"max_capacity": capacity})
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// SearchAvailability runs the availability search over a snapshot of the
// store. Requests exceeding the inn's largest room return an empty list
// without searching.
func (h *Handler) SearchAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	stay, err := parseStayParams(q.Get("check_in"), q.Get("check_out"))
	if err != nil {
		writeError(w, err)
		return
	}
	adults, children, err := parseOccupants(q.Get("adults"), q.Get("children"))
	if err != nil {
		writeError(w, err)
		return
	}

	criteria := inn.SearchCriteria{
		RoomCode: q.Get("room_code"),
		BedType:  q.Get("bed_type"),
		Stay:     stay,
		Adults:   adults,
		Children: children,
	}
	if err := criteria.Validate(); err != nil {
		writeError(w, err)
		return
	}

	capacity, err := h.Store.MaxCapacity(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if criteria.Occupants() > capacity {
		writeJSON(w, http.StatusOK, AvailabilityDTO{Candidates: []CandidateDTO{}})
		return
	}

	rooms, err := h.Store.Rooms(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	reservations, err := h.Store.Reservations(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	result := inn.SearchAvailability(criteria, rooms, reservations)
	dto := AvailabilityDTO{Candidates: make([]CandidateDTO, len(result.Candidates)), Similar: result.Similar}
	for i, c := range result.Candidates {
		dto.Candidates[i] = toCandidateDTO(c)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// Book creates a reservation. The nightly rate is locked at booking time:
// either the rate the client was quoted, or the room's current base price.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &inn.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	stay, err := parseStayParams(req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}

	rate := decimal.Zero
	if req.Rate != "" {
		rate, err = decimal.NewFromString(req.Rate)
		if err != nil {
			writeError(w, &inn.ValidationError{Field: "rate", Reason: "malformed decimal"})
			return
		}
	} else {
		room, err := h.Store.Room(ctx, inn.RoomCode(req.RoomCode))
		if err != nil {
			writeError(w, err)
			return
		}
		rate = room.BasePrice
	}

	res, err := h.Store.Create(ctx, inn.Booking{
		RoomCode:  inn.RoomCode(req.RoomCode),
		Stay:      stay,
		Rate:      rate,
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Adults:    req.Adults,
		Children:  req.Children,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTO(res))
}

// Modify applies a single-field change to a reservation. The stringly
// field/value pair is converted to a typed change here, at the boundary.
func (h *Handler) Modify(w http.ResponseWriter, r *http.Request) {
	code, err := parseCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &inn.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	change, err := inn.ParseChange(req.Field, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Store.Update(r.Context(), code, change); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.Store.Reservation(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*res))
}

// Cancel deletes a reservation.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	code, err := parseCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Store.Cancel(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FindReservations looks up reservations by optional filter fields.
// Blank or "any" parameters are ignored.
func (h *Handler) FindReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := inn.ReservationFilter{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		RoomCode:  q.Get("room_code"),
	}
	if s := q.Get("check_in"); !inn.MatchesAny(s) {
		d, err := inn.ParseDate(s)
		if err != nil {
			writeError(w, &inn.ValidationError{Field: "check_in", Reason: "malformed date " + s})
			return
		}
		filter.CheckIn = d
	}
	if s := q.Get("check_out"); !inn.MatchesAny(s) {
		d, err := inn.ParseDate(s)
		if err != nil {
			writeError(w, &inn.ValidationError{Field: "check_out", Reason: "malformed date " + s})
			return
		}
		filter.CheckOut = d
	}
	if s := q.Get("code"); !inn.MatchesAny(s) {
		code, err := parseCode(s)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Code = code
	}

	details, err := h.Store.FindMatching(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ReservationDTO, len(details))
	for i, d := range details {
		out[i] = toReservationDetailDTO(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// REPORTS
// =============================================================================

// RevenueReport returns the current year's per-room monthly revenue table.
func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rooms, err := h.Store.Rooms(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	reservations, err := h.Store.Reservations(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	report := reports.Revenue(h.now().Year(), rooms, reservations)
	dto := RevenueReportDTO{
		Year:     report.Year,
		Rooms:    make([]RevenueRowDTO, len(report.Rooms)),
		AllRooms: toRevenueRowDTO(report.AllRooms),
	}
	for i, row := range report.Rooms {
		dto.Rooms[i] = toRevenueRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseStayParams(checkIn, checkOut string) (inn.StayPeriod, error) {
	in, err := inn.ParseDate(checkIn)
	if err != nil {
		return inn.StayPeriod{}, &inn.ValidationError{Field: "check_in", Reason: "malformed date " + checkIn}
	}
	out, err := inn.ParseDate(checkOut)
	if err != nil {
		return inn.StayPeriod{}, &inn.ValidationError{Field: "check_out", Reason: "malformed date " + checkOut}
	}
	return inn.NewStayPeriod(in, out), nil
}

func parseOccupants(adults, children string) (int, int, error) {
	a, err := strconv.Atoi(adults)
	if err != nil {
		return 0, 0, &inn.ValidationError{Field: "adults", Reason: "malformed count " + adults}
	}
	c := 0
	if children != "" {
		c, err = strconv.Atoi(children)
		if err != nil {
			return 0, 0, &inn.ValidationError{Field: "children", Reason: "malformed count " + children}
		}
	}
	return a, c, nil
}

func parseCode(s string) (inn.ReservationCode, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, &inn.ValidationError{Field: "code", Reason: "malformed reservation code " + s}
	}
	return inn.ReservationCode(n), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "storage"
	switch {
	case inn.IsValidation(err):
		status, code = http.StatusBadRequest, "validation"
	case inn.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case inn.IsConflict(err):
		status, code = http.StatusConflict, "conflict"
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
