package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// EventLister runs filtered event queries against persistence.
type EventLister interface {
	ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error)
}

// EventQueryService answers participant-scoped event queries. A user
// participates in an event as its organizer or as an attendee; every result
// list is ordered by start time ascending with event id breaking ties.
type EventQueryService struct {
	events EventLister
	now    func() time.Time
	logger *slog.Logger
}

// NewEventQueryService wires dependencies for event queries.
func NewEventQueryService(events EventLister, logger *slog.Logger, now func() time.Time) *EventQueryService {
	if now == nil {
		now = time.Now
	}
	return &EventQueryService{events: events, now: now, logger: logger}
}

// EventsForUser returns every event the user organizes or attends.
func (s *EventQueryService) EventsForUser(ctx context.Context, userID int64) ([]persistence.Event, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.list(ctx, "events_for_user", persistence.EventFilter{ParticipantID: userID})
}

// EventsForUserOnDate returns the user's events whose interval intersects the
// given calendar day.
func (s *EventQueryService) EventsForUserOnDate(ctx context.Context, userID int64, date time.Time) ([]persistence.Event, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	dayStart := startOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	return s.list(ctx, "events_for_user_on_date", persistence.EventFilter{
		ParticipantID:   userID,
		IntersectsStart: &dayStart,
		IntersectsEnd:   &dayEnd,
	})
}

// EventsForUserInRange returns the user's events intersecting the inclusive
// calendar date range. Each event appears exactly once regardless of how many
// days it spans.
func (s *EventQueryService) EventsForUserInRange(ctx context.Context, userID int64, startDate, endDate time.Time) ([]persistence.Event, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	rangeStart := startOfDay(startDate)
	rangeEnd := startOfDay(endDate).AddDate(0, 0, 1)
	if rangeStart.After(startOfDay(endDate)) {
		vErr := &ValidationError{}
		vErr.add("date_range", "start date must not be after end date")
		return nil, vErr
	}

	return s.list(ctx, "events_for_user_in_range", persistence.EventFilter{
		ParticipantID:   userID,
		IntersectsStart: &rangeStart,
		IntersectsEnd:   &rangeEnd,
	})
}

// UpcomingEventsForUser returns the user's events starting at or after the
// current time.
func (s *EventQueryService) UpcomingEventsForUser(ctx context.Context, userID int64) ([]persistence.Event, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	reference := s.now()
	return s.list(ctx, "upcoming_events_for_user", persistence.EventFilter{
		ParticipantID:   userID,
		StartsAtOrAfter: &reference,
	})
}

func (s *EventQueryService) list(ctx context.Context, operation string, filter persistence.EventFilter) ([]persistence.Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}
	events, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		mapped := mapRepositoryError(err)
		serviceLogger(ctx, s.logger, "event_query", operation).
			Error("event query failed", "error", err, "error_kind", ErrorKind(mapped))
		return nil, mapped
	}
	return events, nil
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		vErr := &ValidationError{}
		vErr.add("user_id", "user id must be positive")
		return vErr
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
