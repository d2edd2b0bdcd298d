package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/example/office-booking/internal/booking"
	"github.com/example/office-booking/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool  *ConnectionPool
	retry RetryConfig
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:  pool,
		retry: DefaultRetryConfig(),
	}
}

// CreateEvent inserts an event with its room claims and attendee rows as one
// atomic unit. The room-overlap check runs inside the same transaction as
// the insert, so no other writer can claim a contended room between the
// check and the commit. A rejected claim surfaces as *RoomConflictError.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	if len(event.RoomIDs) == 0 {
		return persistence.Event{}, persistence.ErrConstraintViolation
	}
	if !event.Start.Before(event.End) {
		return persistence.Event{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.RoomIDs = uniqueIDs(event.RoomIDs)
	event.AttendeeIDs = uniqueIDs(event.AttendeeIDs)

	var created persistence.Event
	err := withRetry(ctx, r.retry, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			conflicting, err := r.conflictingRoomsTx(tx, event.RoomIDs, event.Start, event.End)
			if err != nil {
				return err
			}
			if len(conflicting) > 0 {
				return &persistence.RoomConflictError{RoomIDs: conflicting}
			}

			stored, err := r.insertEventTx(tx, event)
			if err != nil {
				return err
			}
			created = stored
			return nil
		})
	})
	if err != nil {
		return persistence.Event{}, err
	}
	return created, nil
}

// GetEvent retrieves an event with its room and attendee sets.
func (r *EventRepository) GetEvent(ctx context.Context, id int64) (persistence.Event, error) {
	const query = `
		SELECT id, name, description, start_time, end_time, organizer_id, created_at, updated_at
		FROM events
		WHERE id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, id)

	event, err := scanEvent(row)
	if err != nil {
		return persistence.Event{}, mapSQLiteError(err)
	}

	if event.RoomIDs, err = r.loadRoomIDs(ctx, id); err != nil {
		return persistence.Event{}, err
	}
	if event.AttendeeIDs, err = r.loadAttendeeIDs(ctx, id); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

// ListEvents returns events matching the filter ordered by start time
// ascending, ties broken by id.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query, args := buildEventListQuery(filter)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, mapSQLiteError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	for i := range events {
		if events[i].RoomIDs, err = r.loadRoomIDs(ctx, events[i].ID); err != nil {
			return nil, err
		}
		if events[i].AttendeeIDs, err = r.loadAttendeeIDs(ctx, events[i].ID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// DeleteEvent removes an event; room claims and attendee rows cascade.
func (r *EventRepository) DeleteEvent(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// RoomAvailable reports whether no stored event claims the room over an
// interval overlapping [start, end). The scan is bounded by the start_time
// and end_time indexes; room membership is a containment check against
// event_rooms, not a join product.
func (r *EventRepository) RoomAvailable(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM event_rooms er
			JOIN events e ON e.id = er.event_id
			WHERE er.room_id = ?
			  AND e.start_time < ?
			  AND e.end_time > ?
		)
	`
	var claimed bool
	err := r.pool.db.QueryRowContext(ctx, query, roomID, formatTime(end), formatTime(start)).Scan(&claimed)
	if err != nil {
		return false, mapSQLiteError(err)
	}
	return !claimed, nil
}

// conflictingRoomsTx loads the room claims of events overlapping [start, end)
// and hands the set-containment decision to booking.DetectConflicts. The SQL
// side only bounds the scan by the time indexes.
func (r *EventRepository) conflictingRoomsTx(tx *sql.Tx, roomIDs []int64, start, end time.Time) ([]int64, error) {
	const query = `
		SELECT e.id, e.start_time, e.end_time, er.room_id
		FROM events e
		JOIN event_rooms er ON er.event_id = e.id
		WHERE e.start_time < ? AND e.end_time > ?
		ORDER BY e.id ASC
	`
	rows, err := tx.Query(query, formatTime(end), formatTime(start))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var claims []booking.Claim
	for rows.Next() {
		var (
			eventID          int64
			rawStart, rawEnd string
			roomID           int64
		)
		if err := rows.Scan(&eventID, &rawStart, &rawEnd, &roomID); err != nil {
			return nil, mapSQLiteError(err)
		}
		if n := len(claims); n > 0 && claims[n-1].EventID == eventID {
			claims[n-1].RoomIDs = append(claims[n-1].RoomIDs, roomID)
			continue
		}
		claimStart, err := parseTime(rawStart)
		if err != nil {
			return nil, err
		}
		claimEnd, err := parseTime(rawEnd)
		if err != nil {
			return nil, err
		}
		claims = append(claims, booking.Claim{
			EventID: eventID,
			RoomIDs: []int64{roomID},
			Start:   claimStart,
			End:     claimEnd,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	conflicts := booking.DetectConflicts(claims, booking.Claim{
		RoomIDs: roomIDs,
		Start:   start,
		End:     end,
	})
	if len(conflicts) == 0 {
		return nil, nil
	}

	var conflicting []int64
	for _, conflict := range conflicts {
		conflicting = append(conflicting, conflict.RoomID)
	}
	slices.Sort(conflicting)
	return slices.Compact(conflicting), nil
}

func (r *EventRepository) insertEventTx(tx *sql.Tx, event persistence.Event) (persistence.Event, error) {
	const insert = `
		INSERT INTO events (name, description, start_time, end_time, organizer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var description sql.NullString
	if event.Description != nil {
		description = sql.NullString{String: *event.Description, Valid: true}
	}
	var organizerID sql.NullInt64
	if event.OrganizerID != nil {
		organizerID = sql.NullInt64{Int64: *event.OrganizerID, Valid: true}
	}

	result, err := tx.Exec(insert,
		event.Name,
		description,
		formatTime(event.Start),
		formatTime(event.End),
		organizerID,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return persistence.Event{}, mapSQLiteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Event{}, fmt.Errorf("failed to read generated event id: %w", err)
	}
	event.ID = id
	event.Start = event.Start.UTC()
	event.End = event.End.UTC()

	for _, roomID := range event.RoomIDs {
		if _, err := tx.Exec("INSERT INTO event_rooms (event_id, room_id) VALUES (?, ?)", id, roomID); err != nil {
			return persistence.Event{}, mapSQLiteError(err)
		}
	}
	for _, userID := range event.AttendeeIDs {
		if _, err := tx.Exec("INSERT INTO attendees (event_id, user_id) VALUES (?, ?)", id, userID); err != nil {
			return persistence.Event{}, mapSQLiteError(err)
		}
	}
	return event, nil
}

func (r *EventRepository) loadRoomIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return r.loadIDs(ctx, "SELECT room_id FROM event_rooms WHERE event_id = ? ORDER BY room_id ASC", eventID)
}

func (r *EventRepository) loadAttendeeIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return r.loadIDs(ctx, "SELECT user_id FROM attendees WHERE event_id = ? ORDER BY user_id ASC", eventID)
}

func (r *EventRepository) loadIDs(ctx context.Context, query string, eventID int64) ([]int64, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, mapSQLiteError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return ids, nil
}

func buildEventListQuery(filter persistence.EventFilter) (string, []any) {
	query := `
		SELECT e.id, e.name, e.description, e.start_time, e.end_time, e.organizer_id, e.created_at, e.updated_at
		FROM events e
	`

	var conditions []string
	var args []any

	if filter.ParticipantID != 0 {
		conditions = append(conditions,
			"(e.organizer_id = ? OR EXISTS (SELECT 1 FROM attendees a WHERE a.event_id = e.id AND a.user_id = ?))")
		args = append(args, filter.ParticipantID, filter.ParticipantID)
	}
	if filter.IntersectsEnd != nil {
		conditions = append(conditions, "e.start_time < ?")
		args = append(args, formatTime(*filter.IntersectsEnd))
	}
	if filter.IntersectsStart != nil {
		conditions = append(conditions, "e.end_time > ?")
		args = append(args, formatTime(*filter.IntersectsStart))
	}
	if filter.StartsAtOrAfter != nil {
		conditions = append(conditions, "e.start_time >= ?")
		args = append(args, formatTime(*filter.StartsAtOrAfter))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.start_time ASC, e.id ASC"

	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event                  persistence.Event
		description            sql.NullString
		organizerID            sql.NullInt64
		startStr, endStr       string
		createdStr, updatedStr string
	)

	err := row.Scan(
		&event.ID,
		&event.Name,
		&description,
		&startStr,
		&endStr,
		&organizerID,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return persistence.Event{}, err
	}

	if description.Valid {
		event.Description = &description.String
	}
	if organizerID.Valid {
		event.OrganizerID = &organizerID.Int64
	}

	if event.Start, err = parseTime(startStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if event.End, err = parseTime(endStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if event.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return event, nil
}

// formatTime normalizes to UTC RFC3339 so lexicographic comparison in SQL
// matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
