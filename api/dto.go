/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Decimal values cross the wire as strings ("109.00") so clients never see
  binary floating point artifacts.

VALIDATION:
  Parsing into domain types happens in handlers; DTOs are pure carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/inn-engine/inn"
	"github.com/warp/inn-engine/reports"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RoomDTO represents a catalog room.
type RoomDTO struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	BedType      string `json:"bed_type"`
	MaxOccupancy int    `json:"max_occupancy"`
	BasePrice    string `json:"base_price"`
}

// UpsertRoomRequest is the inventory process's room upsert payload.
type UpsertRoomRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	BedType      string `json:"bed_type"`
	MaxOccupancy int    `json:"max_occupancy"`
	BasePrice    string `json:"base_price"`
}

// RoomStatusDTO is one row of the rooms-and-rates listing.
type RoomStatusDTO struct {
	RoomDTO
	Popularity       string `json:"popularity"`
	NextCheckIn      string `json:"next_check_in"`
	LastStayDays     int    `json:"last_stay_days"`
	LastStayCheckOut string `json:"last_stay_check_out,omitempty"`
}

// CandidateDTO is one availability search result.
type CandidateDTO struct {
	RoomDTO
	Cost string `json:"cost"`
}

// AvailabilityDTO wraps search results; Similar is true when the
// similarity fallback produced them.
type AvailabilityDTO struct {
	Candidates []CandidateDTO `json:"candidates"`
	Similar    bool           `json:"similar"`
}

// BookRequest is the booking payload. Rate is optional; when omitted the
// room's current base price is locked in.
type BookRequest struct {
	RoomCode  string `json:"room_code"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Rate      string `json:"rate,omitempty"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`
}

// ChangeRequest is a single-field reservation update.
type ChangeRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ReservationDTO represents a reservation in responses.
type ReservationDTO struct {
	Code         int64  `json:"code"`
	RoomCode     string `json:"room_code"`
	RoomName     string `json:"room_name,omitempty"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	Rate         string `json:"rate"`
	LastName     string `json:"last_name"`
	FirstName    string `json:"first_name"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
	MaxOccupancy int    `json:"max_occupancy,omitempty"`
}

// RevenueRowDTO is one room's revenue row; twelve monthly cells plus the
// annual total, all decimal strings.
type RevenueRowDTO struct {
	RoomCode string     `json:"room_code"`
	RoomName string     `json:"room_name"`
	Months   [12]string `json:"months"`
	Total    string     `json:"total"`
}

// RevenueReportDTO is the full revenue table with the "All Rooms" row.
type RevenueReportDTO struct {
	Year     int             `json:"year"`
	Rooms    []RevenueRowDTO `json:"rooms"`
	AllRooms RevenueRowDTO   `json:"all_rooms"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRoomDTO(r inn.Room) RoomDTO {
	return RoomDTO{
		Code:         string(r.Code),
		Name:         r.Name,
		BedType:      r.BedType,
		MaxOccupancy: r.MaxOccupancy,
		BasePrice:    r.BasePrice.StringFixed(2),
	}
}

func toRoomStatusDTO(s reports.RoomStatus) RoomStatusDTO {
	dto := RoomStatusDTO{
		RoomDTO:      toRoomDTO(s.Room),
		Popularity:   s.Popularity.StringFixed(2),
		NextCheckIn:  s.NextCheckIn.String(),
		LastStayDays: s.LastStayDays,
	}
	if !s.LastStayCheckOut.IsZero() {
		dto.LastStayCheckOut = s.LastStayCheckOut.String()
	}
	return dto
}

func toCandidateDTO(c inn.Candidate) CandidateDTO {
	return CandidateDTO{RoomDTO: toRoomDTO(c.Room), Cost: c.Cost.StringFixed(2)}
}

func toReservationDTO(r inn.Reservation) ReservationDTO {
	return ReservationDTO{
		Code:      int64(r.Code),
		RoomCode:  string(r.RoomCode),
		CheckIn:   r.Stay.CheckIn.String(),
		CheckOut:  r.Stay.CheckOut.String(),
		Rate:      r.Rate.StringFixed(2),
		LastName:  r.LastName,
		FirstName: r.FirstName,
		Adults:    r.Adults,
		Children:  r.Children,
	}
}

func toReservationDetailDTO(d inn.ReservationDetail) ReservationDTO {
	dto := toReservationDTO(d.Reservation)
	dto.RoomName = d.RoomName
	dto.MaxOccupancy = d.MaxOccupancy
	return dto
}

func toRevenueRowDTO(row reports.RevenueRow) RevenueRowDTO {
	dto := RevenueRowDTO{
		RoomCode: row.RoomCode,
		RoomName: row.RoomName,
		Total:    row.Total.StringFixed(2),
	}
	for i, cell := range row.Months {
		dto.Months[i] = cell.StringFixed(2)
	}
	return dto
}
