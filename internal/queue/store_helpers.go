package queue

import (
	"database/sql"
	"time"
)

const jobColumns = "id, public_id, prompt, style, status, title, voice, script_json, working_dir, final_file, video_url, thumbnail_url, error_kind, error_message, progress_stage, progress_percent, progress_message, created_at, updated_at, last_heartbeat"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		publicID        string
		prompt          string
		style           string
		statusStr       string
		title           sql.NullString
		voice           sql.NullString
		scriptJSON      sql.NullString
		workingDir      sql.NullString
		finalFile       sql.NullString
		videoURL        sql.NullString
		thumbnailURL    sql.NullString
		errorKind       sql.NullString
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      string
		updatedRaw      string
		heartbeatRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&publicID,
		&prompt,
		&style,
		&statusStr,
		&title,
		&voice,
		&scriptJSON,
		&workingDir,
		&finalFile,
		&videoURL,
		&thumbnailURL,
		&errorKind,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&heartbeatRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		PublicID:        publicID,
		Prompt:          prompt,
		Style:           style,
		Status:          Status(statusStr),
		Title:           title.String,
		Voice:           voice.String,
		ScriptJSON:      scriptJSON.String,
		WorkingDir:      workingDir.String,
		FinalFile:       finalFile.String,
		VideoURL:        videoURL.String,
		ThumbnailURL:    thumbnailURL.String,
		ErrorKind:       errorKind.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		CreatedAt:       parseTimestamp(createdRaw),
		UpdatedAt:       parseTimestamp(updatedRaw),
	}
	if heartbeatRaw.Valid {
		if ts := parseTimestamp(heartbeatRaw.String); !ts.IsZero() {
			job.LastHeartbeat = &ts
		}
	}
	return job, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	return time.Time{}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
