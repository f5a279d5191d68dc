package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inn-engine/inn"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	room := inn.Room{
		Code: "AOB", Name: "Abovyan", BedType: "Queen",
		MaxOccupancy: 2, BasePrice: decimal.RequireFromString("100"),
	}
	if err := s.SaveRoom(context.Background(), room); err != nil {
		t.Fatal(err)
	}
	return s
}

func jan(d int) inn.Date { return inn.NewDate(2024, time.January, d) }

func TestCreate_CancelAndRebook(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	b := inn.Booking{
		RoomCode: "AOB", Stay: inn.NewStayPeriod(jan(1), jan(3)),
		Rate: decimal.RequireFromString("100"), LastName: "smith", Adults: 2,
	}

	res, err := s.Create(ctx, b)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Code != 1 {
		t.Errorf("expected code 1, got %d", res.Code)
	}
	if res.LastName != "SMITH" {
		t.Errorf("expected upper-cased name, got %q", res.LastName)
	}

	if _, err := s.Create(ctx, b); !inn.IsConflict(err) {
		t.Errorf("expected conflict on identical stay, got %v", err)
	}

	if err := s.Cancel(ctx, res.Code); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.Create(ctx, b); err != nil {
		t.Errorf("rebooking after cancel should succeed, got %v", err)
	}
}

func TestUpdate_ConflictLeavesRecordUnchanged(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	first, err := s.Create(ctx, inn.Booking{
		RoomCode: "AOB", Stay: inn.NewStayPeriod(jan(1), jan(3)),
		Rate: decimal.RequireFromString("100"), LastName: "Smith", Adults: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, inn.Booking{
		RoomCode: "AOB", Stay: inn.NewStayPeriod(jan(5), jan(8)),
		Rate: decimal.RequireFromString("100"), LastName: "Jones", Adults: 1,
	}); err != nil {
		t.Fatal(err)
	}

	err = s.Update(ctx, first.Code, inn.CheckOutTo(jan(6)))
	if !inn.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := s.Reservation(ctx, first.Code)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Stay.CheckOut.Equal(jan(3)) {
		t.Errorf("rejected update must not mutate: checkout is %s", got.Stay.CheckOut)
	}
}

func TestFindMatching_Wildcards(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, inn.Booking{
		RoomCode: "AOB", Stay: inn.NewStayPeriod(jan(1), jan(3)),
		Rate: decimal.RequireFromString("100"), LastName: "Smith", FirstName: "Ada", Adults: 1,
	}); err != nil {
		t.Fatal(err)
	}

	all, err := s.FindMatching(ctx, inn.ReservationFilter{LastName: "any", RoomCode: "ANY"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 match, got %d", len(all))
	}
	if all[0].RoomName != "Abovyan" || all[0].MaxOccupancy != 2 {
		t.Errorf("expected joined room data, got %+v", all[0])
	}

	none, err := s.FindMatching(ctx, inn.ReservationFilter{LastName: "Nobody"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}
