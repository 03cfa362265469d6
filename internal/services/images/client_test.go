package images

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func imageResponse(t *testing.T, raw []byte) []byte {
	t.Helper()
	payload := map[string]any{
		"data": []any{
			map[string]any{"b64_json": base64.StdEncoding.EncodeToString(raw)},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return encoded
}

func TestGenerateDALLEDialect(t *testing.T) {
	frame := []byte("jpeg-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req generationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Size != "1792x1024" || req.Quality != "standard" || req.N != 1 {
			t.Fatalf("unexpected dalle payload: %+v", req)
		}
		if req.Width != 0 || req.InferenceSteps != 0 {
			t.Fatalf("flux fields leaked into dalle payload: %+v", req)
		}
		w.Write(imageResponse(t, frame))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "dall-e-3"}, DialectDALLE)
	got, err := client.Generate(context.Background(), "a volcano at dusk", RenderOptions{Width: 1792, Height: 1024})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(got) != string(frame) {
		t.Fatalf("unexpected image bytes: %q", got)
	}
}

func TestGenerateFluxDialect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Width != 1920 || req.Height != 1080 || req.InferenceSteps != 16 {
			t.Fatalf("unexpected flux payload: %+v", req)
		}
		if req.ResponseExtension != "jpg" || req.Seed != -1 {
			t.Fatalf("unexpected flux extras: %+v", req)
		}
		if req.Size != "" || req.Quality != "" {
			t.Fatalf("dalle fields leaked into flux payload: %+v", req)
		}
		w.Write(imageResponse(t, []byte("frame")))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "flux-schnell"}, DialectFlux)
	if _, err := client.Generate(context.Background(), "a castle in fog", RenderOptions{Width: 1920, Height: 1080}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(imageResponse(t, []byte("frame")))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "flux-schnell"},
		DialectFlux,
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Generate(context.Background(), "prompt", RenderOptions{Width: 1920, Height: 1080}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected retry after 503, got %d calls", calls.Load())
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "dall-e-3"},
		DialectDALLE,
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Generate(context.Background(), "prompt", RenderOptions{Width: 1792, Height: 1024}); err == nil {
		t.Fatal("expected error for http 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestGenerateRejectsEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "dall-e-3"}, DialectDALLE, WithRetry(1, 0))
	if _, err := client.Generate(context.Background(), "prompt", RenderOptions{Width: 1792, Height: 1024}); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	client := NewClient(Config{APIKey: "test", Model: "dall-e-3"}, DialectDALLE)
	if _, err := client.Generate(context.Background(), "  ", RenderOptions{}); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}
