package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/config"
	httptransport "github.com/example/office-booking/internal/http"
	"github.com/example/office-booking/internal/logging"
	"github.com/example/office-booking/internal/persistence/sqlite"
	"github.com/example/office-booking/internal/persistence/sqlite/migration"
	"github.com/example/office-booking/internal/resettoken"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := migration.NewManager(pool.DB(), logger).RunMigrations(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	tokens := resettoken.NewStore(nil)
	tokens.StartSweeping(ctx, time.Minute)

	handler := newHandler(cfg, logger, pool, tokens, time.Now)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	<-shutdownDone
	return nil
}

// newHandler assembles repositories, services and the HTTP router into the
// handler served by main. Tests reuse it to exercise the wired stack.
func newHandler(cfg config.Config, logger *slog.Logger, pool *sqlite.ConnectionPool, tokens *resettoken.Store, now func() time.Time) http.Handler {
	eventRepo := sqlite.NewEventRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)

	availability := application.NewAvailabilityService(eventRepo, roomRepo, logger, now)
	bookings := application.NewBookingService(eventRepo, roomRepo, userRepo, availability, logger, now)
	queries := application.NewEventQueryService(eventRepo, logger, now)
	rooms := application.NewRoomService(roomRepo, logger)
	users := application.NewUserService(userRepo, tokens, cfg.ResetTokenLifetime, logger, now)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	rateLimiter := httptransport.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Events: httptransport.NewEventHandler(bookings, queries, logger),
		Rooms:  httptransport.NewRoomHandler(rooms, availability, logger),
		Users:  httptransport.NewUserHandler(users, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			corsHandler.Handler,
			rateLimiter.Limit,
		},
	})
}
