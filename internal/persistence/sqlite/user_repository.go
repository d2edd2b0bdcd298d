package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a user and returns it with its generated id. Email
// uniqueness is enforced case-insensitively by the schema.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	const insert = `
		INSERT INTO users (email, first_name, last_name, role, company_id, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	var companyID sql.NullInt64
	if user.CompanyID != nil {
		companyID = sql.NullInt64{Int64: *user.CompanyID, Valid: true}
	}

	result, err := r.pool.db.ExecContext(ctx, insert,
		user.Email, user.FirstName, user.LastName, user.Role,
		companyID, user.PasswordHash,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	if err != nil {
		return persistence.User{}, mapSQLiteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to read generated user id: %w", err)
	}
	user.ID = id
	return user, nil
}

// GetUser retrieves a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	return r.getUserBy(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email, matched case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return r.getUserBy(ctx, "email = ? COLLATE NOCASE", email)
}

func (r *UserRepository) getUserBy(ctx context.Context, condition string, arg any) (persistence.User, error) {
	query := `
		SELECT id, email, first_name, last_name, role, company_id, password_hash, created_at, updated_at
		FROM users
		WHERE ` + condition

	user, err := scanUser(r.pool.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return persistence.User{}, mapSQLiteError(err)
	}
	return user, nil
}

// ListUsers returns all users ordered by id.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	const query = `
		SELECT id, email, first_name, last_name, role, company_id, password_hash, created_at, updated_at
		FROM users
		ORDER BY id ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapSQLiteError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return users, nil
}

// UpdatePasswordHash replaces a user's password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string, updatedAt time.Time) error {
	const update = `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, update, passwordHash, formatTime(updatedAt), userID)
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

// DeleteUser removes a user; attendee rows cascade, organized events keep
// running with a cleared organizer.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
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

// MissingUserIDs returns the subset of ids with no user record.
func (r *UserRepository) MissingUserIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.pool.db, "users", ids)
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                   persistence.User
		companyID              sql.NullInt64
		createdStr, updatedStr string
	)

	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.Role, &companyID, &user.PasswordHash, &createdStr, &updatedStr)
	if err != nil {
		return persistence.User{}, err
	}

	if companyID.Valid {
		user.CompanyID = &companyID.Int64
	}

	if user.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return user, nil
}
