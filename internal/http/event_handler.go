package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/persistence"
)

type bookingService interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (persistence.Event, error)
	GetEvent(ctx context.Context, id int64) (persistence.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

type eventQueryService interface {
	EventsForUser(ctx context.Context, userID int64) ([]persistence.Event, error)
	EventsForUserOnDate(ctx context.Context, userID int64, date time.Time) ([]persistence.Event, error)
	EventsForUserInRange(ctx context.Context, userID int64, startDate, endDate time.Time) ([]persistence.Event, error)
	UpcomingEventsForUser(ctx context.Context, userID int64) ([]persistence.Event, error)
}

type EventHandler struct {
	bookings  bookingService
	queries   eventQueryService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(bookings bookingService, queries eventQueryService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{bookings: bookings, queries: queries, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "unparseable event timestamps", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create")
	event, err := h.bookings.CreateEvent(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event booked")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := eventIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	event, err := h.bookings.GetEvent(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "event_id", id).ErrorContext(r.Context(), "event lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := eventIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Delete", "event_id", id)
	if err := h.bookings.DeleteEvent(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List answers participant-scoped queries. userId is required; date,
// startDate/endDate and upcoming=true narrow the result and are mutually
// exclusive.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.queries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	userID, err := strconv.ParseInt(query.Get("userId"), 10, 64)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	logger := h.log(r.Context(), "List", "user_id", userID)

	var events []persistence.Event
	switch {
	case query.Get("date") != "":
		date, parseErr := parseDate(query.Get("date"))
		if parseErr != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, parseErr)
			return
		}
		events, err = h.queries.EventsForUserOnDate(r.Context(), userID, date)
	case query.Get("startDate") != "" || query.Get("endDate") != "":
		startDate, parseErr := parseDate(query.Get("startDate"))
		if parseErr != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, parseErr)
			return
		}
		endDate, parseErr := parseDate(query.Get("endDate"))
		if parseErr != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, parseErr)
			return
		}
		events, err = h.queries.EventsForUserInRange(r.Context(), userID, startDate, endDate)
	case query.Get("upcoming") == "true":
		events, err = h.queries.UpcomingEventsForUser(r.Context(), userID)
	default:
		events, err = h.queries.EventsForUser(r.Context(), userID)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "event query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

func eventIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := EventIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.New("dates must use the YYYY-MM-DD format")
	}
	return date, nil
}

func parseTimestamp(field, value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.New(field + " must be an RFC 3339 timestamp")
	}
	return ts, nil
}

type eventRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	OrganizerID *int64  `json:"organizer_id"`
	RoomIDs     []int64 `json:"room_ids"`
	AttendeeIDs []int64 `json:"attendee_ids"`
}

func (r eventRequest) toInput() (application.CreateEventInput, error) {
	start, err := parseTimestamp("start_time", r.StartTime)
	if err != nil {
		return application.CreateEventInput{}, err
	}
	end, err := parseTimestamp("end_time", r.EndTime)
	if err != nil {
		return application.CreateEventInput{}, err
	}

	return application.CreateEventInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Start:       start,
		End:         end,
		OrganizerID: r.OrganizerID,
		RoomIDs:     r.RoomIDs,
		AttendeeIDs: r.AttendeeIDs,
	}, nil
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	OrganizerID *int64  `json:"organizer_id,omitempty"`
	RoomIDs     []int64 `json:"room_ids"`
	AttendeeIDs []int64 `json:"attendee_ids,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toEventDTO(event persistence.Event) eventDTO {
	return eventDTO{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		StartTime:   event.Start.UTC().Format(time.RFC3339),
		EndTime:     event.End.UTC().Format(time.RFC3339),
		OrganizerID: event.OrganizerID,
		RoomIDs:     event.RoomIDs,
		AttendeeIDs: event.AttendeeIDs,
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   event.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toEventDTOs(events []persistence.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}
