package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"taskboard-api/domain"
	"taskboard-api/stream"
)

func TestStreamEventsWritesSSEFrames(t *testing.T) {
	auth := newTestAuth()
	token, err := auth.IssueToken(&domain.User{ID: 7, Username: "alice", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	hub := stream.NewHub()
	e := echo.New()
	e.GET("/stream", streamEvents(hub, auth))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		e.ServeHTTP(rec, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ev, err := domain.NewEvent(domain.EventTaskCreated, domain.TaskPayload{})
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	hub.Dispatch(ev)
	targeted, err := domain.NewUserEvent(domain.EventNewNotification, 99, domain.NotificationPayload{})
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	hub.Dispatch(targeted)

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	if got := rec.Header().Get(echo.HeaderContentType); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: taskCreated\n") {
		t.Fatalf("expected a taskCreated frame, got %q", body)
	}
	if !strings.Contains(body, "data: ") {
		t.Fatalf("expected a data line, got %q", body)
	}
	if strings.Contains(body, "newNotification") {
		t.Fatalf("another user's notification must not be delivered, got %q", body)
	}
	if hub.Len() != 0 {
		t.Fatalf("session must be torn down, got %d", hub.Len())
	}
}

func TestStreamEventsRejectsMissingToken(t *testing.T) {
	hub := stream.NewHub()
	e := echo.New()
	e.GET("/stream", streamEvents(hub, newTestAuth()))

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if hub.Len() != 0 {
		t.Fatalf("no session must be registered, got %d", hub.Len())
	}
}
