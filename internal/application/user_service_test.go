package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

type userAccountsStub struct {
	user        persistence.User
	createErr   error
	getErr      error
	updatedID   int64
	updatedHash string
	updatedAt   time.Time
	updateErr   error
}

func (s *userAccountsStub) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if s.createErr != nil {
		return persistence.User{}, s.createErr
	}
	user.ID = 1
	s.user = user
	return user, nil
}

func (s *userAccountsStub) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	if s.getErr != nil {
		return persistence.User{}, s.getErr
	}
	return s.user, nil
}

func (s *userAccountsStub) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if s.getErr != nil {
		return persistence.User{}, s.getErr
	}
	return s.user, nil
}

func (s *userAccountsStub) ListUsers(ctx context.Context) ([]persistence.User, error) {
	return []persistence.User{s.user}, nil
}

func (s *userAccountsStub) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string, updatedAt time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedID = userID
	s.updatedHash = passwordHash
	s.updatedAt = updatedAt
	return nil
}

type tokenStoreStub struct {
	token      string
	createErr  error
	consumedID int64
	consumeOK  bool
	lifetime   time.Duration
}

func (s *tokenStoreStub) CreateToken(userID int64, lifetime time.Duration) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.lifetime = lifetime
	return s.token, nil
}

func (s *tokenStoreStub) ConsumeToken(token string) (int64, bool) {
	if !s.consumeOK {
		return 0, false
	}
	s.consumeOK = false
	return s.consumedID, true
}

func validUserInput() UserInput {
	return UserInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct-horse",
	}
}

func TestUserService_CreateUser(t *testing.T) {
	accounts := &userAccountsStub{}
	service := NewUserService(accounts, &tokenStoreStub{}, time.Hour, nil, testClock)

	user, err := service.CreateUser(context.Background(), validUserInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Role != "staff" {
		t.Errorf("expected default role staff, got %q", user.Role)
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct-horse" {
		t.Error("password must be stored hashed")
	}
	if err := VerifyPassword(user.PasswordHash, "correct-horse"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UserInput)
		field  string
	}{
		{"empty email", func(i *UserInput) { i.Email = " " }, "email"},
		{"email without at", func(i *UserInput) { i.Email = "alice.example.com" }, "email"},
		{"empty first name", func(i *UserInput) { i.FirstName = "" }, "first_name"},
		{"empty last name", func(i *UserInput) { i.LastName = "" }, "last_name"},
		{"unknown role", func(i *UserInput) { i.Role = "janitor" }, "role"},
		{"short password", func(i *UserInput) { i.Password = "short" }, "password"},
		{"non-positive company", func(i *UserInput) { zero := int64(0); i.CompanyID = &zero }, "company_id"},
	}

	service := NewUserService(&userAccountsStub{}, &tokenStoreStub{}, time.Hour, nil, testClock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validUserInput()
			tt.mutate(&input)

			_, err := service.CreateUser(context.Background(), input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tt.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.field, vErr.FieldErrors)
			}
		})
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	accounts := &userAccountsStub{createErr: persistence.ErrDuplicate}
	service := NewUserService(accounts, &tokenStoreStub{}, time.Hour, nil, testClock)

	_, err := service.CreateUser(context.Background(), validUserInput())
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserService_RequestPasswordReset(t *testing.T) {
	accounts := &userAccountsStub{user: persistence.User{ID: 42, Email: "alice@example.com"}}
	tokens := &tokenStoreStub{token: "opaque"}
	service := NewUserService(accounts, tokens, 30*time.Minute, nil, testClock)

	token, err := service.RequestPasswordReset(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if token != "opaque" {
		t.Errorf("unexpected token %q", token)
	}
	if tokens.lifetime != 30*time.Minute {
		t.Errorf("expected configured lifetime, got %v", tokens.lifetime)
	}
}

func TestUserService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	accounts := &userAccountsStub{getErr: persistence.ErrNotFound}
	service := NewUserService(accounts, &tokenStoreStub{}, time.Hour, nil, testClock)

	_, err := service.RequestPasswordReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_CompletePasswordReset(t *testing.T) {
	accounts := &userAccountsStub{}
	tokens := &tokenStoreStub{consumedID: 42, consumeOK: true}
	service := NewUserService(accounts, tokens, time.Hour, nil, testClock)

	if err := service.CompletePasswordReset(context.Background(), "opaque", "new-password"); err != nil {
		t.Fatalf("CompletePasswordReset failed: %v", err)
	}
	if accounts.updatedID != 42 {
		t.Errorf("expected user 42 updated, got %d", accounts.updatedID)
	}
	if err := VerifyPassword(accounts.updatedHash, "new-password"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
	if !accounts.updatedAt.Equal(testClock()) {
		t.Errorf("expected update timestamp %v, got %v", testClock(), accounts.updatedAt)
	}
}

func TestUserService_CompletePasswordReset_InvalidToken(t *testing.T) {
	tokens := &tokenStoreStub{consumeOK: false}
	service := NewUserService(&userAccountsStub{}, tokens, time.Hour, nil, testClock)

	err := service.CompletePasswordReset(context.Background(), "stale", "new-password")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUserService_CompletePasswordReset_UpdateFailureBurnsToken(t *testing.T) {
	// A failed hash update does not refund the consumed token; retries need a
	// freshly requested one.
	accounts := &userAccountsStub{updateErr: persistence.ErrUnavailable}
	tokens := &tokenStoreStub{consumedID: 42, consumeOK: true}
	service := NewUserService(accounts, tokens, time.Hour, nil, testClock)

	err := service.CompletePasswordReset(context.Background(), "opaque", "new-password")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	err = service.CompletePasswordReset(context.Background(), "opaque", "new-password")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on replay, got %v", err)
	}
}

func TestUserService_CompletePasswordReset_ShortPassword(t *testing.T) {
	tokens := &tokenStoreStub{consumedID: 42, consumeOK: true}
	service := NewUserService(&userAccountsStub{}, tokens, time.Hour, nil, testClock)

	err := service.CompletePasswordReset(context.Background(), "opaque", "short")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
