package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
)

const feedLimit = 50

func (s *Server) handleGenerate(c echo.Context) error {
	ctx := c.Request().Context()

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "prompt is required"})
	}

	job, err := s.store.NewJob(ctx, req.Prompt, req.Style)
	if err != nil {
		s.logger.Error("job submission failed", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to queue job"})
	}

	if s.notifier != nil {
		err := s.notifier.Publish(ctx, notifications.EventJobQueued, notifications.Payload{
			"prompt": job.Prompt,
			"style":  job.Style,
		})
		if err != nil {
			s.logger.Debug("queue notification failed", logging.Error(err))
		}
	}

	s.logger.Info("job queued",
		logging.String("public_id", job.PublicID),
		logging.String("style", job.Style),
	)
	return c.JSON(http.StatusAccepted, GenerateResponse{
		JobID:  job.PublicID,
		Status: string(job.Status),
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := s.store.GetByPublicID(ctx, id)
	if err != nil {
		s.logger.Error("status lookup failed", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "status lookup failed"})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return c.JSON(http.StatusOK, JobStatus{
		JobID:           job.PublicID,
		Status:          string(job.Status),
		Prompt:          job.Prompt,
		Style:           job.Style,
		Title:           job.Title,
		ProgressStage:   job.ProgressStage,
		ProgressPercent: job.ProgressPercent,
		ProgressMessage: job.ProgressMessage,
		VideoURL:        job.VideoURL,
		ThumbnailURL:    job.ThumbnailURL,
		ErrorKind:       job.ErrorKind,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	})
}

func (s *Server) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()

	jobs, err := s.store.List(ctx, queue.StatusCompleted)
	if err != nil {
		s.logger.Error("feed lookup failed", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "feed lookup failed"})
	}

	videos := make([]FeedVideo, 0, len(jobs))
	for _, job := range jobs {
		if len(videos) == feedLimit {
			break
		}
		videos = append(videos, FeedVideo{
			ID:           job.PublicID,
			Title:        job.Title,
			Style:        job.Style,
			VideoURL:     job.VideoURL,
			ThumbnailURL: job.ThumbnailURL,
		})
	}

	return c.JSON(http.StatusOK, FeedResponse{
		Success: true,
		Count:   len(videos),
		Videos:  videos,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := s.store.Health(ctx)
	if err != nil {
		s.logger.Error("queue health failed", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "queue unavailable"})
	}

	resp := HealthResponse{
		Status: "ok",
		Queue: map[string]int{
			"total":      counts.Total,
			"pending":    counts.Pending,
			"processing": counts.Processing,
			"completed":  counts.Completed,
			"failed":     counts.Failed,
		},
	}
	if s.stageHealth != nil {
		health := s.stageHealth(ctx)
		resp.Stages = make(map[string]bool, len(health))
		resp.StageNotes = make(map[string]string)
		for name, record := range health {
			resp.Stages[name] = record.Ready
			if !record.Ready {
				resp.Status = "degraded"
				resp.StageNotes[name] = record.Detail
			}
		}
		if len(resp.StageNotes) == 0 {
			resp.StageNotes = nil
		}
	}
	return c.JSON(http.StatusOK, resp)
}
