package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/office-booking/internal/config"
	"github.com/example/office-booking/internal/logging"
	"github.com/example/office-booking/internal/persistence"
	"github.com/example/office-booking/internal/resettoken"
	"github.com/example/office-booking/internal/testfixtures"
)

func newTestHandler(t *testing.T) (http.Handler, *testfixtures.SQLiteHarness) {
	t.Helper()

	harness := testfixtures.NewSQLiteHarness(t)
	clock := testfixtures.NewClock(time.Time{})
	cfg := config.Config{
		ResetTokenLifetime: time.Hour,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
		CORSOrigins:        []string{"*"},
	}
	logger := logging.NewLogger(io.Discard, "error")
	tokens := resettoken.NewStore(clock.NowFunc())

	return newHandler(cfg, logger, harness.Pool, tokens, clock.NowFunc()), harness
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestBookingFlowEndToEnd(t *testing.T) {
	handler, harness := newTestHandler(t)

	company := harness.SeedCompany(t)
	room := harness.SeedRoom(t, company.ID)
	organizer := harness.SeedUser(t, company.ID)

	start := testfixtures.ReferenceTime().Add(time.Hour)
	end := start.Add(time.Hour)
	body := fmt.Sprintf(`{"name":"Sprint review","start_time":%q,"end_time":%q,"organizer_id":%d,"room_ids":[%d]}`,
		start.Format(time.RFC3339), end.Format(time.RFC3339), organizer.ID, room.ID)

	rec := do(t, handler, http.MethodPost, "/events", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Event struct {
			ID      int64   `json:"id"`
			Name    string  `json:"name"`
			RoomIDs []int64 `json:"room_ids"`
		} `json:"event"`
	}
	decode(t, rec, &created)
	if created.Event.ID == 0 || created.Event.Name != "Sprint review" {
		t.Fatalf("unexpected created event: %+v", created.Event)
	}

	// The room is now taken over the booked interval.
	rec = do(t, handler, http.MethodPost, fmt.Sprintf("/rooms/%d/availability", room.ID),
		fmt.Sprintf(`{"start_time":%q,"end_time":%q}`, start.Format(time.RFC3339), end.Format(time.RFC3339)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var probe struct {
		Available bool `json:"available"`
	}
	decode(t, rec, &probe)
	if probe.Available {
		t.Fatal("expected room to be unavailable during the booking")
	}

	// An overlapping booking is rejected with the contended rooms.
	rec = do(t, handler, http.MethodPost, "/events", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var conflict struct {
		ErrorCode string  `json:"error_code"`
		RoomIDs   []int64 `json:"room_ids"`
	}
	decode(t, rec, &conflict)
	if conflict.ErrorCode != "ROOM_CONFLICT" {
		t.Fatalf("unexpected error code %q", conflict.ErrorCode)
	}
	if len(conflict.RoomIDs) != 1 || conflict.RoomIDs[0] != room.ID {
		t.Fatalf("unexpected contended rooms %v", conflict.RoomIDs)
	}

	// The organizer sees the booking in their event list.
	rec = do(t, handler, http.MethodGet, fmt.Sprintf("/events?userId=%d", organizer.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var listed struct {
		Events []struct {
			ID int64 `json:"id"`
		} `json:"events"`
	}
	decode(t, rec, &listed)
	if len(listed.Events) != 1 || listed.Events[0].ID != created.Event.ID {
		t.Fatalf("unexpected event list %+v", listed.Events)
	}

	// Deleting the booking frees the room again.
	rec = do(t, handler, http.MethodDelete, fmt.Sprintf("/events/%d", created.Event.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, handler, http.MethodPost, fmt.Sprintf("/rooms/%d/availability", room.ID),
		fmt.Sprintf(`{"start_time":%q,"end_time":%q}`, start.Format(time.RFC3339), end.Format(time.RFC3339)))
	decode(t, rec, &probe)
	if !probe.Available {
		t.Fatal("expected room to be available after the booking was removed")
	}
}

func TestAvailableRoomsEndpointFiltersBookedRooms(t *testing.T) {
	handler, harness := newTestHandler(t)

	company := harness.SeedCompany(t)
	booked := harness.SeedRoom(t, company.ID)
	free := harness.SeedRoom(t, company.ID)
	harness.SeedEvent(t, booked.ID, time.Hour, time.Hour)

	start := testfixtures.ReferenceTime().Add(time.Hour)
	end := start.Add(30 * time.Minute)
	path := fmt.Sprintf("/rooms/available?startTime=%s&endTime=%s",
		start.Format(time.RFC3339), end.Format(time.RFC3339))

	rec := do(t, handler, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var listed struct {
		Rooms []struct {
			ID int64 `json:"id"`
		} `json:"rooms"`
	}
	decode(t, rec, &listed)
	if len(listed.Rooms) != 1 || listed.Rooms[0].ID != free.ID {
		t.Fatalf("expected only room %d to be free, got %+v", free.ID, listed.Rooms)
	}
}

// A date-range query must return exactly the de-duplicated union of the
// per-day queries over the same window, even for events spanning midnight.
func TestRangeQueryMatchesPerDayUnion(t *testing.T) {
	handler, harness := newTestHandler(t)

	company := harness.SeedCompany(t)
	room := harness.SeedRoom(t, company.ID)
	user := harness.SeedUser(t, company.ID)

	day1 := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	intervals := []struct {
		name       string
		start, end time.Time
	}{
		{"morning standup", day1.Add(9 * time.Hour), day1.Add(10 * time.Hour)},
		{"overnight deploy", day1.Add(23 * time.Hour), day1.Add(25 * time.Hour)},
		{"retro", day1.Add(48*time.Hour + 14*time.Hour), day1.Add(48*time.Hour + 15*time.Hour)},
	}
	for _, iv := range intervals {
		_, err := harness.Events.CreateEvent(context.Background(), persistence.Event{
			Name:        iv.name,
			Start:       iv.start,
			End:         iv.end,
			OrganizerID: &user.ID,
			RoomIDs:     []int64{room.ID},
			CreatedAt:   testfixtures.ReferenceTime(),
			UpdatedAt:   testfixtures.ReferenceTime(),
		})
		if err != nil {
			t.Fatalf("failed to seed event %q: %v", iv.name, err)
		}
	}

	listIDs := func(path string) map[int64]bool {
		rec := do(t, handler, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		var listed struct {
			Events []struct {
				ID int64 `json:"id"`
			} `json:"events"`
		}
		decode(t, rec, &listed)
		ids := make(map[int64]bool, len(listed.Events))
		for _, e := range listed.Events {
			if ids[e.ID] {
				t.Fatalf("GET %s: event %d listed twice", path, e.ID)
			}
			ids[e.ID] = true
		}
		return ids
	}

	union := make(map[int64]bool)
	for day := 0; day < 3; day++ {
		date := day1.AddDate(0, 0, day).Format("2006-01-02")
		for id := range listIDs(fmt.Sprintf("/events?userId=%d&date=%s", user.ID, date)) {
			union[id] = true
		}
	}

	ranged := listIDs(fmt.Sprintf("/events?userId=%d&startDate=2024-02-05&endDate=2024-02-07", user.ID))
	if len(ranged) != len(union) || len(ranged) != 3 {
		t.Fatalf("range query returned %d events, per-day union has %d, want 3", len(ranged), len(union))
	}
	for id := range union {
		if !ranged[id] {
			t.Fatalf("event %d present in per-day union but missing from range query", id)
		}
	}
}

func TestUserCreationEndToEnd(t *testing.T) {
	handler, harness := newTestHandler(t)

	company := harness.SeedCompany(t)
	body := fmt.Sprintf(`{"email":"dana@example.com","first_name":"Dana","last_name":"Reyes","role":"manager","company_id":%d,"password":"s3cret-pass"}`, company.ID)

	rec := do(t, handler, http.MethodPost, "/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response must not leak credentials: %s", rec.Body.String())
	}

	// Duplicate email is rejected regardless of case.
	rec = do(t, handler, http.MethodPost, "/users",
		fmt.Sprintf(`{"email":"DANA@example.com","first_name":"Dana","last_name":"Reyes","company_id":%d,"password":"s3cret-pass"}`, company.ID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
