package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"keyframe/internal/config"
)

const userAgent = "Keyframe/0.1.0"

// Event names a job lifecycle moment worth telling the user about.
type Event string

const (
	EventJobQueued    Event = "job_queued"
	EventJobStarted   Event = "job_started"
	EventScriptReady  Event = "script_ready"
	EventJobCompleted Event = "job_completed"
	EventJobFailed    Event = "job_failed"
	EventTest         Event = "test"
)

// Payload carries event-specific fields referenced by the message templates.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// Publish renders the event to a push message and posts it to the topic.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	return n.send(ctx, render(event, payload))
}

func render(event Event, payload Payload) message {
	get := func(key string) string {
		return strings.TrimSpace(payload[key])
	}

	switch event {
	case EventJobQueued:
		return message{
			title: "Keyframe - Job Queued",
			body:  fmt.Sprintf("Queued %s video: %s", orUnknown(get("style")), get("prompt")),
			tags:  []string{"keyframe", "job", "queued"},
		}
	case EventJobStarted:
		return message{
			title: "Keyframe - Processing",
			body:  fmt.Sprintf("Started processing: %s", get("prompt")),
			tags:  []string{"keyframe", "job", "started"},
		}
	case EventScriptReady:
		return message{
			title: "Keyframe - Script Ready",
			body:  fmt.Sprintf("Script generated: %s", orUnknown(get("title"))),
			tags:  []string{"keyframe", "script", "ready"},
		}
	case EventJobCompleted:
		body := fmt.Sprintf("Video ready: %s", orUnknown(get("title")))
		if url := get("video_url"); url != "" {
			body = fmt.Sprintf("%s\n%s", body, url)
		}
		return message{
			title:    "Keyframe - Complete",
			body:     body,
			tags:     []string{"keyframe", "job", "completed"},
			priority: "high",
		}
	case EventJobFailed:
		body := fmt.Sprintf("Job failed: %s", orUnknown(get("prompt")))
		if reason := get("error"); reason != "" {
			body = fmt.Sprintf("%s\nReason: %s", body, reason)
		}
		return message{
			title:    "Keyframe - Failed",
			body:     body,
			tags:     []string{"keyframe", "job", "failed"},
			priority: "high",
		}
	case EventTest:
		return message{
			title:    "Keyframe - Test",
			body:     "Notification system test",
			tags:     []string{"keyframe", "test"},
			priority: "low",
		}
	default:
		return message{
			title: "Keyframe",
			body:  string(event),
			tags:  []string{"keyframe"},
		}
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

// Publish discards the event.
func (noopService) Publish(context.Context, Event, Payload) error { return nil }
