package testfixtures

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/office-booking/internal/persistence"
	"github.com/example/office-booking/internal/persistence/sqlite"
	"github.com/example/office-booking/internal/persistence/sqlite/migration"
)

var (
	companyCounter uint64
	userCounter    uint64
	roomCounter    uint64
)

// SQLiteHarness provides repository access backed by a temporary, fully
// migrated SQLite database for integration-style tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Events    *sqlite.EventRepository
	Rooms     *sqlite.RoomRepository
	Users     *sqlite.UserRepository
	Companies *sqlite.CompanyRepository
}

// NewSQLiteHarness opens a temporary database, runs every migration and wires
// the repositories. Cleanup is registered with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dsn := filepath.Join(tb.TempDir(), "booking.db")
	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(dsn))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = pool.Close() })

	manager := migration.NewManager(pool.DB(), nil)
	if err := manager.RunMigrations(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Pool:      pool,
		Events:    sqlite.NewEventRepository(pool),
		Rooms:     sqlite.NewRoomRepository(pool),
		Users:     sqlite.NewUserRepository(pool),
		Companies: sqlite.NewCompanyRepository(pool),
	}
}

// SeedCompany persists a deterministic company record.
func (h *SQLiteHarness) SeedCompany(tb testing.TB) persistence.Company {
	tb.Helper()

	idx := atomic.AddUint64(&companyCounter, 1)
	company, err := h.Companies.CreateCompany(context.Background(), persistence.Company{
		Name: fmt.Sprintf("Company %03d", idx),
	})
	if err != nil {
		tb.Fatalf("failed to seed company: %v", err)
	}
	return company
}

// SeedUser persists a deterministic user belonging to the given company.
func (h *SQLiteHarness) SeedUser(tb testing.TB, companyID int64) persistence.User {
	tb.Helper()

	idx := atomic.AddUint64(&userCounter, 1)
	user, err := h.Users.CreateUser(context.Background(), persistence.User{
		Email:        fmt.Sprintf("user%03d@example.com", idx),
		FirstName:    fmt.Sprintf("First%03d", idx),
		LastName:     fmt.Sprintf("Last%03d", idx),
		Role:         "staff",
		CompanyID:    &companyID,
		PasswordHash: "fixture-hash",
	})
	if err != nil {
		tb.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedRoom persists a deterministic room owned by the given company.
func (h *SQLiteHarness) SeedRoom(tb testing.TB, companyID int64) persistence.Room {
	tb.Helper()

	idx := atomic.AddUint64(&roomCounter, 1)
	capacity := 8
	room, err := h.Rooms.CreateRoom(context.Background(), persistence.Room{
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  &capacity,
		CompanyID: companyID,
	})
	if err != nil {
		tb.Fatalf("failed to seed room: %v", err)
	}
	return room
}

// SeedEvent persists an event claiming the given room over
// [ReferenceTime+offset, ReferenceTime+offset+duration).
func (h *SQLiteHarness) SeedEvent(tb testing.TB, roomID int64, offset, duration time.Duration) persistence.Event {
	tb.Helper()

	start := ReferenceTime().Add(offset)
	event, err := h.Events.CreateEvent(context.Background(), persistence.Event{
		Name:    "Fixture Event",
		Start:   start,
		End:     start.Add(duration),
		RoomIDs: []int64{roomID},
	})
	if err != nil {
		tb.Fatalf("failed to seed event: %v", err)
	}
	return event
}
