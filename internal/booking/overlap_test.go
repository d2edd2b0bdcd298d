package booking

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"contained", at(9, 0), at(10, 0), at(9, 15), at(9, 45), true},
		{"partial front", at(9, 0), at(9, 30), at(9, 15), at(9, 45), true},
		{"partial back", at(9, 15), at(9, 45), at(9, 0), at(9, 30), true},
		{"abutting before", at(9, 0), at(9, 30), at(9, 30), at(10, 0), false},
		{"abutting after", at(9, 30), at(10, 0), at(9, 0), at(9, 30), false},
		{"disjoint", at(9, 0), at(9, 30), at(11, 0), at(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%v,%v,%v,%v) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	existing := []Claim{
		{EventID: 1, RoomIDs: []int64{5}, Start: at(9, 0), End: at(9, 30)},
		{EventID: 2, RoomIDs: []int64{6, 7}, Start: at(9, 0), End: at(10, 0)},
	}

	t.Run("overlapping shared room", func(t *testing.T) {
		got := DetectConflicts(existing, Claim{RoomIDs: []int64{5}, Start: at(9, 15), End: at(9, 45)})
		if len(got) != 1 || got[0].WithEventID != 1 || got[0].RoomID != 5 {
			t.Fatalf("unexpected conflicts: %+v", got)
		}
	})

	t.Run("abutting shared room", func(t *testing.T) {
		if got := DetectConflicts(existing, Claim{RoomIDs: []int64{5}, Start: at(9, 30), End: at(10, 0)}); got != nil {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("overlapping different room", func(t *testing.T) {
		if got := DetectConflicts(existing, Claim{RoomIDs: []int64{9}, Start: at(9, 0), End: at(10, 0)}); got != nil {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("multi-room candidate hits both claims", func(t *testing.T) {
		got := DetectConflicts(existing, Claim{RoomIDs: []int64{5, 7}, Start: at(9, 0), End: at(9, 20)})
		if len(got) != 2 {
			t.Fatalf("expected 2 conflicts, got %+v", got)
		}
	})

	t.Run("candidate skips itself", func(t *testing.T) {
		if got := DetectConflicts(existing, Claim{EventID: 1, RoomIDs: []int64{5}, Start: at(9, 0), End: at(9, 30)}); got != nil {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})
}
