package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job. A job makes exactly one terminal
// transition: processing ends in completed or failed, never both.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// IsValidStatus reports whether value names a known status.
func IsValidStatus(value string) bool {
	for _, status := range allStatuses {
		if string(status) == value {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the job lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DaemonStopReason is the error message set when processing jobs are failed
// due to daemon shutdown or a stale heartbeat reclaim.
const DaemonStopReason = "Daemon stopped"

// Job is a video generation job persisted in SQLite.
type Job struct {
	ID           int64
	PublicID     string
	Prompt       string
	Style        string
	Status       Status
	Title        string
	Voice        string
	ScriptJSON   string
	WorkingDir   string
	FinalFile    string
	VideoURL     string
	ThumbnailURL string
	ErrorKind    string
	ErrorMessage string

	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string

	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastHeartbeat *time.Time
}

// SetFailed marks the job failed with the supplied kind and message.
func (j *Job) SetFailed(kind, message string) {
	j.Status = StatusFailed
	j.ErrorKind = strings.TrimSpace(kind)
	j.ErrorMessage = strings.TrimSpace(message)
	j.LastHeartbeat = nil
}

// SetCompleted marks the job completed with its published artifact URLs.
func (j *Job) SetCompleted(videoURL, thumbnailURL string) {
	j.Status = StatusCompleted
	j.VideoURL = strings.TrimSpace(videoURL)
	j.ThumbnailURL = strings.TrimSpace(thumbnailURL)
	j.ErrorKind = ""
	j.ErrorMessage = ""
	j.ProgressPercent = 100
	j.LastHeartbeat = nil
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
