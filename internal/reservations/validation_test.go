package reservations

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestValidateTableCreate(t *testing.T) {
	tests := []struct {
		name       string
		req        TableCreateRequest
		wantErrors int
	}{
		{name: "valid", req: TableCreateRequest{Number: "T1", Capacity: 4}, wantErrors: 0},
		{name: "fullPolicy", req: TableCreateRequest{Number: "T1", Capacity: 4, MinCapacity: 2, OpenTime: "12:00", CloseTime: "23:00", ReservationDurationMinutes: 120, BufferBeforeMinutes: 5, BufferAfterMinutes: 15}, wantErrors: 0},
		{name: "missingNumber", req: TableCreateRequest{Number: "  ", Capacity: 4}, wantErrors: 1},
		{name: "zeroCapacity", req: TableCreateRequest{Number: "T1"}, wantErrors: 1},
		{name: "minAboveCapacity", req: TableCreateRequest{Number: "T1", Capacity: 2, MinCapacity: 3}, wantErrors: 1},
		{name: "badClock", req: TableCreateRequest{Number: "T1", Capacity: 2, OpenTime: "noon"}, wantErrors: 1},
		{name: "negativeBuffers", req: TableCreateRequest{Number: "T1", Capacity: 2, BufferBeforeMinutes: -5}, wantErrors: 1},
		{name: "everythingWrong", req: TableCreateRequest{MinCapacity: -1, ReservationDurationMinutes: -1}, wantErrors: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTableCreate(context.Background(), tt.req)
			if len(errs) != tt.wantErrors {
				t.Errorf("ValidateTableCreate() = %v, want %d errors", errs, tt.wantErrors)
			}
		})
	}
}

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(t *Table)
		wantErrors int
	}{
		{name: "defaults", mutate: func(t *Table) { t.Capacity = 4 }, wantErrors: 0},
		{name: "openAfterClose", mutate: func(t *Table) { t.Capacity = 4; t.OpenTime = "23:00"; t.CloseTime = "11:00" }, wantErrors: 1},
		{name: "openEqualsClose", mutate: func(t *Table) { t.Capacity = 4; t.CloseTime = t.OpenTime }, wantErrors: 1},
		{name: "minAboveCapacity", mutate: func(t *Table) { t.Capacity = 1; t.MinCapacity = 2 }, wantErrors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable()
			tt.mutate(table)
			if errs := ValidateTable(table); len(errs) != tt.wantErrors {
				t.Errorf("ValidateTable() = %v, want %d errors", errs, tt.wantErrors)
			}
		})
	}
}

func TestValidateReservationRequests(t *testing.T) {
	customerID := uuid.New()
	badStatus := "SEATED"
	zero := 0
	nilID := uuid.Nil
	badDate := "2026/03/10"

	t.Run("create", func(t *testing.T) {
		ok := ReservationCreateRequest{CustomerID: customerID, NumberOfPeople: 2, Date: testDate, Time: "19:30", Status: string(StatusConfirmed)}
		if errs := ValidateReservationCreate(context.Background(), ok); len(errs) != 0 {
			t.Errorf("ValidateReservationCreate() = %v, want none", errs)
		}

		bad := ReservationCreateRequest{Date: "10-03-2026", Time: "25:00", Status: badStatus}
		if errs := ValidateReservationCreate(context.Background(), bad); len(errs) != 5 {
			t.Errorf("ValidateReservationCreate() = %v, want 5 errors", errs)
		}
	})

	t.Run("walkIn", func(t *testing.T) {
		if errs := ValidateWalkInCreate(context.Background(), WalkInCreateRequest{CustomerID: customerID, NumberOfPeople: 1}); len(errs) != 0 {
			t.Errorf("ValidateWalkInCreate() = %v, want none", errs)
		}
		if errs := ValidateWalkInCreate(context.Background(), WalkInCreateRequest{}); len(errs) != 2 {
			t.Errorf("ValidateWalkInCreate() = %v, want 2 errors", errs)
		}
	})

	t.Run("update", func(t *testing.T) {
		if errs := ValidateReservationUpdate(context.Background(), uuid.New(), ReservationUpdateRequest{}); len(errs) != 0 {
			t.Errorf("ValidateReservationUpdate() empty = %v, want none", errs)
		}

		bad := ReservationUpdateRequest{CustomerID: &nilID, NumberOfPeople: &zero, Date: &badDate, Status: &badStatus}
		if errs := ValidateReservationUpdate(context.Background(), uuid.Nil, bad); len(errs) != 5 {
			t.Errorf("ValidateReservationUpdate() = %v, want 5 errors", errs)
		}
	})
}

func TestWalkInRequestNotifiesByDefault(t *testing.T) {
	silent := false

	if cmd := (WalkInCreateRequest{}).command("host"); !cmd.Notify {
		t.Error("command() Notify = false, want true when unset")
	}
	if cmd := (WalkInCreateRequest{Notify: &silent}).command("host"); cmd.Notify {
		t.Error("command() Notify = true, want false")
	}
}
