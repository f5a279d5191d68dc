package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inn-engine/inn"
	"github.com/warp/inn-engine/store/memory"
)

// testServer wires the full router against an in-memory store with a
// pinned clock, so popularity and revenue results are deterministic.
func testServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	seed := []inn.Room{
		{Code: "AOB", Name: "Abovyan", BedType: "Queen", MaxOccupancy: 2, BasePrice: decimal.RequireFromString("100")},
		{Code: "CAS", Name: "Cascade", BedType: "King", MaxOccupancy: 4, BasePrice: decimal.RequireFromString("150")},
	}
	for _, room := range seed {
		require.NoError(t, store.SaveRoom(context.Background(), room))
	}

	h := NewHandler(store)
	h.now = func() inn.Date { return inn.NewDate(2024, time.June, 1) }

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestBook_CreatesReservation(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "smith", FirstName: "ada", Adults: 2,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[ReservationDTO](t, resp)
	assert.Equal(t, int64(1), res.Code)
	assert.Equal(t, "SMITH", res.LastName)
	assert.Equal(t, "ADA", res.FirstName)
	// Rate omitted: the room's base price is locked in.
	assert.Equal(t, "100.00", res.Rate)
}

func TestBook_OverlapReturns409(t *testing.T) {
	srv, _ := testServer(t)

	first := doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", Adults: 1,
	})
	require.Equal(t, http.StatusCreated, first.StatusCode)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-02", CheckOut: "2024-07-04",
		LastName: "Jones", Adults: 1,
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "conflict", errResp.Code)
}

func TestBook_MalformedDateReturns400(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "not-a-date", CheckOut: "2024-07-03",
		LastName: "Smith", Adults: 1,
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "validation", errResp.Code)
}

func TestBook_UnknownRoomReturns404(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "NOPE", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", Adults: 1,
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModify_SingleField(t *testing.T) {
	srv, _ := testServer(t)

	created := decode[ReservationDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", FirstName: "Ada", Adults: 1,
	}))

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/reservations/1", ChangeRequest{
		Field: "lastName", Value: "jones",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[ReservationDTO](t, resp)
	assert.Equal(t, created.Code, updated.Code)
	assert.Equal(t, "JONES", updated.LastName)
	assert.Equal(t, "ADA", updated.FirstName)
}

func TestModify_DateConflictReturns409(t *testing.T) {
	srv, _ := testServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", Adults: 1,
	})
	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-05", CheckOut: "2024-07-08",
		LastName: "Jones", Adults: 1,
	})

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/reservations/1", ChangeRequest{
		Field: "checkOut", Value: "2024-07-06",
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestModify_UnknownFieldReturns400(t *testing.T) {
	srv, _ := testServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", Adults: 1,
	})

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/reservations/1", ChangeRequest{
		Field: "roomCode", Value: "CAS",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCancel_ThenRebook(t *testing.T) {
	srv, _ := testServer(t)

	book := BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", Adults: 1,
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", book)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/reservations/1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/reservations/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/reservations", book)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSearchAvailability(t *testing.T) {
	srv, _ := testServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-05",
		LastName: "Smith", Adults: 1,
	})

	resp := doJSON(t, http.MethodGet,
		srv.URL+"/api/availability?check_in=2024-07-02&check_out=2024-07-04&adults=2&room_code=any&bed_type=any", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[AvailabilityDTO](t, resp)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "CAS", result.Candidates[0].Code)
	assert.False(t, result.Similar)
}

func TestSearchAvailability_OversizedPartyGetsEmptyList(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodGet,
		srv.URL+"/api/availability?check_in=2024-07-02&check_out=2024-07-04&adults=5", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[AvailabilityDTO](t, resp)
	assert.Empty(t, result.Candidates)
}

func TestListRooms_PopularityOrder(t *testing.T) {
	srv, _ := testServer(t)

	// CAS occupied within the trailing window, AOB idle.
	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "CAS", CheckIn: "2024-05-01", CheckOut: "2024-05-19",
		LastName: "Smith", Adults: 2,
	})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/rooms", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	statuses := decode[[]RoomStatusDTO](t, resp)
	require.Len(t, statuses, 2)
	assert.Equal(t, "CAS", statuses[0].Code)
	assert.Equal(t, "0.10", statuses[0].Popularity)
	assert.Equal(t, 18, statuses[0].LastStayDays)
	assert.Equal(t, "2024-05-19", statuses[0].LastStayCheckOut)
	assert.Equal(t, "0.00", statuses[1].Popularity)
	// Idle room is free today.
	assert.Equal(t, "2024-06-01", statuses[1].NextCheckIn)
}

func TestMaxCapacity(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/capacity", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]int](t, resp)
	assert.Equal(t, 4, body["max_capacity"])
}

func TestRevenueReport(t *testing.T) {
	srv, _ := testServer(t)

	// 2 nights in January at the base rate of 100.
	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-01-30", CheckOut: "2024-02-01",
		LastName: "Smith", Adults: 1,
	})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/revenue", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[RevenueReportDTO](t, resp)
	assert.Equal(t, 2024, report.Year)
	require.Len(t, report.Rooms, 2)
	assert.Equal(t, "200.00", report.Rooms[0].Months[0])
	assert.Equal(t, "200.00", report.Rooms[0].Total)
	assert.Equal(t, "200.00", report.AllRooms.Total)
}

func TestUpsertRoom(t *testing.T) {
	srv, store := testServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rooms", UpsertRoomRequest{
		Code: "NEW", Name: "Newcomer", BedType: "Twin", MaxOccupancy: 1, BasePrice: "75",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	room, err := store.Room(context.Background(), "NEW")
	require.NoError(t, err)
	assert.Equal(t, "Newcomer", room.Name)
	assert.True(t, room.BasePrice.Equal(decimal.RequireFromString("75")))
}

func TestFindReservations(t *testing.T) {
	srv, _ := testServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "AOB", CheckIn: "2024-07-01", CheckOut: "2024-07-03",
		LastName: "Smith", FirstName: "Ada", Adults: 1,
	})
	doJSON(t, http.MethodPost, srv.URL+"/api/reservations", BookRequest{
		RoomCode: "CAS", CheckIn: "2024-08-01", CheckOut: "2024-08-03",
		LastName: "Jones", FirstName: "Bob", Adults: 2,
	})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reservations?last_name=smith", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	matches := decode[[]ReservationDTO](t, resp)
	require.Len(t, matches, 1)
	assert.Equal(t, "AOB", matches[0].RoomCode)
	assert.Equal(t, "Abovyan", matches[0].RoomName)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reservations?last_name=any&room_code=any", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]ReservationDTO](t, resp)
	assert.Len(t, all, 2)
}
