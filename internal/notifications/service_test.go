package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"keyframe/internal/config"
)

func TestNewServiceNoopWithoutTopic(t *testing.T) {
	cfg := config.Default()
	svc := NewService(&cfg)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.Publish(context.Background(), EventTest, nil); err != nil {
		t.Fatalf("noop publish returned error: %v", err)
	}
}

func TestPublishJobCompleted(t *testing.T) {
	var gotTitle, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(&cfg)

	err := svc.Publish(context.Background(), EventJobCompleted, Payload{
		"title":     "Creatures of the Deep",
		"video_url": "https://cdn.example/videos/abc.mp4",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if gotTitle != "Keyframe - Complete" {
		t.Fatalf("unexpected title %q", gotTitle)
	}
	if gotPriority != "high" {
		t.Fatalf("unexpected priority %q", gotPriority)
	}
	if !strings.Contains(gotBody, "Creatures of the Deep") || !strings.Contains(gotBody, "https://cdn.example/videos/abc.mp4") {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestPublishJobFailedIncludesReason(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(&cfg)

	err := svc.Publish(context.Background(), EventJobFailed, Payload{
		"prompt": "volcanoes",
		"error":  "image request rejected",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.Contains(gotBody, "image request rejected") {
		t.Fatalf("expected failure reason in body, got %q", gotBody)
	}
}

func TestPublishServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(&cfg)

	if err := svc.Publish(context.Background(), EventTest, nil); err == nil {
		t.Fatal("expected error for http 403")
	}
}
