package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// UserAccounts captures the persistence interactions needed by user
// administration and the password reset flow.
type UserAccounts interface {
	CreateUser(ctx context.Context, user persistence.User) (persistence.User, error)
	GetUser(ctx context.Context, id int64) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string, updatedAt time.Time) error
}

// TokenStore issues and consumes single-use reset tokens.
type TokenStore interface {
	CreateToken(userID int64, lifetime time.Duration) (string, error)
	ConsumeToken(token string) (int64, bool)
}

var validRoles = map[string]struct{}{
	"staff":   {},
	"manager": {},
	"admin":   {},
}

// UserService provides user administration and the password reset flow.
// Reset tokens never leave the process; delivering them to users is someone
// else's problem.
type UserService struct {
	users         UserAccounts
	tokens        TokenStore
	tokenLifetime time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewUserService wires dependencies for user operations. tokenLifetime
// bounds how long a reset token stays valid; non-positive values fall back
// to one hour.
func NewUserService(users UserAccounts, tokens TokenStore, tokenLifetime time.Duration, logger *slog.Logger, now func() time.Time) *UserService {
	if tokenLifetime <= 0 {
		tokenLifetime = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:         users,
		tokens:        tokens,
		tokenLifetime: tokenLifetime,
		now:           now,
		logger:        logger,
	}
}

// CreateUser validates and persists a new user account.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (persistence.User, error) {
	logger := serviceLogger(ctx, s.logger, "user", "create_user")

	vErr := &ValidationError{}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must contain @")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		vErr.add("first_name", "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		vErr.add("last_name", "last name is required")
	}
	role := input.Role
	if role == "" {
		role = "staff"
	}
	if _, ok := validRoles[role]; !ok {
		vErr.add("role", "role must be staff, manager or admin")
	}
	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if input.CompanyID != nil && *input.CompanyID <= 0 {
		vErr.add("company_id", "company id must be positive")
	}
	if vErr.HasErrors() {
		logger.Warn("user rejected", "error_kind", ErrorKind(vErr))
		return persistence.User{}, vErr
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return persistence.User{}, err
	}

	user, err := s.users.CreateUser(ctx, persistence.User{
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		CompanyID:    input.CompanyID,
		PasswordHash: hash,
	})
	if err != nil {
		mapped := mapRepositoryError(err)
		logger.Error("user creation failed", "error", err, "error_kind", ErrorKind(mapped))
		return persistence.User{}, mapped
	}

	logger.Info("user created", "user_id", user.ID)
	return user, nil
}

// GetUser loads one user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	if id <= 0 {
		vErr := &ValidationError{}
		vErr.add("user_id", "user id must be positive")
		return persistence.User{}, vErr
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return persistence.User{}, mapRepositoryError(err)
	}
	return user, nil
}

// ListUsers enumerates every user account.
func (s *UserService) ListUsers(ctx context.Context) ([]persistence.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return users, nil
}

// RequestPasswordReset issues a single-use token for the account registered
// under the email. The token is returned to the caller; no delivery happens
// here.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	logger := serviceLogger(ctx, s.logger, "user", "request_password_reset")

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		mapped := mapRepositoryError(err)
		logger.Warn("reset request failed", "error_kind", ErrorKind(mapped))
		return "", mapped
	}

	token, err := s.tokens.CreateToken(user.ID, s.tokenLifetime)
	if err != nil {
		logger.Error("token issuance failed", "error", err)
		return "", err
	}

	logger.Info("reset token issued", "user_id", user.ID)
	return token, nil
}

// CompletePasswordReset consumes the token and replaces the user's password
// hash. A token wins at most once; expired, unknown and already-used tokens
// all fail identically with ErrInvalidToken. Consumption is not rolled back
// when the subsequent hash update fails, so the caller must request a fresh
// token to retry rather than replay the burned one.
func (s *UserService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	logger := serviceLogger(ctx, s.logger, "user", "complete_password_reset")

	if len(newPassword) < 8 {
		vErr := &ValidationError{}
		vErr.add("password", "password must be at least 8 characters")
		return vErr
	}

	userID, ok := s.tokens.ConsumeToken(token)
	if !ok {
		logger.Warn("reset rejected", "error_kind", ErrorKind(ErrInvalidToken))
		return ErrInvalidToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash, s.now()); err != nil {
		mapped := mapRepositoryError(err)
		logger.Error("password update failed", "error", err, "error_kind", ErrorKind(mapped))
		return mapped
	}

	logger.Info("password reset completed", "user_id", userID)
	return nil
}
