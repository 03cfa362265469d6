package api

import "time"

// GenerateRequest is the POST /api/v1/generate body.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// GenerateResponse acknowledges a queued job.
type GenerateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatus is the GET /api/v1/status/:id body.
type JobStatus struct {
	JobID           string    `json:"job_id"`
	Status          string    `json:"status"`
	Prompt          string    `json:"prompt"`
	Style           string    `json:"style"`
	Title           string    `json:"title,omitempty"`
	ProgressStage   string    `json:"progress_stage,omitempty"`
	ProgressPercent float64   `json:"progress_percent"`
	ProgressMessage string    `json:"progress_message,omitempty"`
	VideoURL        string    `json:"video_url,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	ErrorKind       string    `json:"error_kind,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FeedVideo is one completed entry in the public feed.
type FeedVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Style        string `json:"style"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FeedResponse is the GET /api/v1/feed body.
type FeedResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Videos  []FeedVideo `json:"videos"`
}

// HealthResponse summarizes daemon readiness and queue counts.
type HealthResponse struct {
	Status     string            `json:"status"`
	Queue      map[string]int    `json:"queue"`
	Stages     map[string]bool   `json:"stages,omitempty"`
	StageNotes map[string]string `json:"stage_notes,omitempty"`
}
