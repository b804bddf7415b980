package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cadenza/internal/config"
	"cadenza/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	type received struct {
		title    string
		tags     string
		priority string
		body     string
	}
	var got received

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = received{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyRunStarted(context.Background(), 12); err != nil {
		t.Fatalf("NotifyRunStarted: %v", err)
	}
	if got.title != "Cadenza - Run Started" || !strings.Contains(got.body, "12 items") {
		t.Fatalf("run started notification = %+v", got)
	}

	if err := svc.NotifyRunCompleted(context.Background(), 10, 2, 0, 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if !strings.Contains(got.body, "10 tagged") || !strings.Contains(got.body, "2 for review") || !strings.Contains(got.body, "1m30s") {
		t.Fatalf("run completed body = %q", got.body)
	}
	if strings.Contains(got.title, "errors") {
		t.Fatalf("clean run titled %q", got.title)
	}

	if err := svc.NotifyRunCompleted(context.Background(), 8, 1, 3, time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if !strings.Contains(got.title, "with errors") || !strings.Contains(got.body, "3 failed") {
		t.Fatalf("failed run notification = %+v", got)
	}

	if err := svc.NotifyError(context.Background(), errors.New("db locked"), "persistence"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if got.priority != "high" || !strings.Contains(got.body, "persistence") || !strings.Contains(got.body, "db locked") {
		t.Fatalf("error notification = %+v", got)
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
