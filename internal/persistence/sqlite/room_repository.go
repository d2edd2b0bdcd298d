package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a room and returns it with its generated id.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	const insert = `
		INSERT INTO rooms (name, capacity, location, company_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	var capacity sql.NullInt64
	if room.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*room.Capacity), Valid: true}
	}
	var location sql.NullString
	if room.Location != nil {
		location = sql.NullString{String: *room.Location, Valid: true}
	}

	result, err := r.pool.db.ExecContext(ctx, insert,
		room.Name, capacity, location, room.CompanyID,
		formatTime(room.CreatedAt), formatTime(room.UpdatedAt))
	if err != nil {
		return persistence.Room{}, mapSQLiteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Room{}, fmt.Errorf("failed to read generated room id: %w", err)
	}
	room.ID = id
	return room, nil
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	const query = `
		SELECT id, name, capacity, location, company_id, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`
	room, err := scanRoom(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Room{}, mapSQLiteError(err)
	}
	return room, nil
}

// ListRooms returns rooms ordered by name, optionally restricted to one
// company.
func (r *RoomRepository) ListRooms(ctx context.Context, companyID *int64) ([]persistence.Room, error) {
	query := `
		SELECT id, name, capacity, location, company_id, created_at, updated_at
		FROM rooms
	`
	var args []any
	if companyID != nil {
		query += " WHERE company_id = ?"
		args = append(args, *companyID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapSQLiteError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return rooms, nil
}

// DeleteRoom removes a room; event claims referencing it cascade.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
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

// MissingRoomIDs returns the subset of ids with no room record.
func (r *RoomRepository) MissingRoomIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.pool.db, "rooms", ids)
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room                   persistence.Room
		capacity               sql.NullInt64
		location               sql.NullString
		createdStr, updatedStr string
	)

	err := row.Scan(&room.ID, &room.Name, &capacity, &location, &room.CompanyID, &createdStr, &updatedStr)
	if err != nil {
		return persistence.Room{}, err
	}

	if capacity.Valid {
		value := int(capacity.Int64)
		room.Capacity = &value
	}
	if location.Valid {
		room.Location = &location.String
	}

	if room.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return room, nil
}

// missingIDs reports which of the given ids have no row in the table.
func missingIDs(ctx context.Context, db *sql.DB, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("SELECT id FROM %s WHERE id IN (%s)", table, strings.Join(placeholders, ","))
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, mapSQLiteError(err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
