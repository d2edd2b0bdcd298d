package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/office-booking/internal/persistence"
	"github.com/example/office-booking/internal/persistence/sqlite/migration"
)

func setupPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "booking_test.db")
	pool, err := NewConnectionPool(migration.DefaultSQLiteConfig(dsn))
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := migration.NewManager(pool.DB(), nil).RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	return pool
}

func seedCompany(t *testing.T, pool *ConnectionPool) int64 {
	t.Helper()

	company, err := NewCompanyRepository(pool).CreateCompany(context.Background(), persistence.Company{Name: "Acme"})
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	return company.ID
}

func seedUser(t *testing.T, pool *ConnectionPool, email string) int64 {
	t.Helper()

	user, err := NewUserRepository(pool).CreateUser(context.Background(), persistence.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      "staff",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user.ID
}

func seedRoom(t *testing.T, pool *ConnectionPool, companyID int64, name string) int64 {
	t.Helper()

	room, err := NewRoomRepository(pool).CreateRoom(context.Background(), persistence.Room{
		Name:      name,
		CompanyID: companyID,
	})
	if err != nil {
		t.Fatalf("CreateRoom(%s) failed: %v", name, err)
	}
	return room.ID
}

func mustCreateEvent(t *testing.T, repo *EventRepository, event persistence.Event) persistence.Event {
	t.Helper()

	created, err := repo.CreateEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("CreateEvent(%s) failed: %v", event.Name, err)
	}
	return created
}

func dayAt(hour, min int) time.Time {
	return time.Date(2024, 1, 10, hour, min, 0, 0, time.UTC)
}
