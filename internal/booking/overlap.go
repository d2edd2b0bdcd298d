package booking

import "time"

// Claim represents one event's hold on a set of rooms over a time interval.
type Claim struct {
	EventID int64
	RoomIDs []int64
	Start   time.Time
	End     time.Time
}

// Conflict details an overlapping room claim that callers can present to users.
type Conflict struct {
	WithEventID int64
	RoomID      int64
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// DetectConflicts identifies room conflicts for the candidate claim against
// existing claims. Abutting intervals do not conflict.
func DetectConflicts(existing []Claim, candidate Claim) []Conflict {
	if len(candidate.RoomIDs) == 0 {
		return nil
	}

	wanted := make(map[int64]struct{}, len(candidate.RoomIDs))
	for _, id := range candidate.RoomIDs {
		wanted[id] = struct{}{}
	}

	var conflicts []Conflict
	for _, claim := range existing {
		if claim.EventID == candidate.EventID {
			continue
		}
		if !Overlaps(claim.Start, claim.End, candidate.Start, candidate.End) {
			continue
		}
		for _, roomID := range claim.RoomIDs {
			if _, ok := wanted[roomID]; ok {
				conflicts = append(conflicts, Conflict{
					WithEventID: claim.EventID,
					RoomID:      roomID,
				})
			}
		}
	}
	return conflicts
}
