package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var sawContextLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawContextLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusNoContent)
	})

	handler := RequestLogger(logger)(inner)
	req := httptest.NewRequest(http.MethodGet, "/events?userId=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !sawContextLogger {
		t.Error("expected a logger attached to the request context")
	}
	output := buf.String()
	if !strings.Contains(output, "request started") || !strings.Contains(output, "request completed") {
		t.Errorf("expected start and completion records, got: %s", output)
	}
	if !strings.Contains(output, "request_id=") {
		t.Errorf("expected a request id attribute, got: %s", output)
	}
}

func TestRateLimiter_Limit(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var ok, rejected int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/events?userId=1", nil)
		req.RemoteAddr = "10.0.0.1:52000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		switch rec.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			rejected++
		}
	}

	if ok != 2 {
		t.Errorf("expected burst of 2 to pass, got %d", ok)
	}
	if rejected != 3 {
		t.Errorf("expected 3 rejections, got %d", rejected)
	}

	// A different client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/events?userId=1", nil)
	req.RemoteAddr = "10.0.0.2:52000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected fresh client to pass, got %d", rec.Code)
	}
}
