package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilterMapsDateBounds(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	got := buildFilter(Filter{
		UserID:        "65f000000000000000000001",
		Status:        "confirmed",
		CheckInFrom:   &from,
		CheckInUntil:  &until,
		CheckOutUntil: &checkOut,
	})

	if got["user"] != "65f000000000000000000001" {
		t.Errorf("user = %v", got["user"])
	}
	if got["status"] != "confirmed" {
		t.Errorf("status = %v", got["status"])
	}

	checkIn, ok := got["dates.check_in"].(bson.M)
	if !ok {
		t.Fatalf("dates.check_in missing, filter = %v", got)
	}
	if checkIn["$gte"] != from || checkIn["$lte"] != until {
		t.Errorf("dates.check_in bounds = %v", checkIn)
	}

	checkOutBound, ok := got["dates.check_out"].(bson.M)
	if !ok {
		t.Fatalf("dates.check_out missing, filter = %v", got)
	}
	if checkOutBound["$lte"] != checkOut {
		t.Errorf("dates.check_out bound = %v", checkOutBound)
	}
}

func TestBuildFilterEmptyMatchesEverything(t *testing.T) {
	if got := buildFilter(Filter{}); len(got) != 0 {
		t.Errorf("empty filter produced clauses: %v", got)
	}
}
