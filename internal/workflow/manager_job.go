package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/stage"
)

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) error {
	jobCtx := services.WithJobID(ctx, job.ID)
	jobCtx = services.WithRequestID(jobCtx, uuid.NewString())
	jobLogger := logging.WithContext(jobCtx, logger)

	if err := m.transitionToProcessing(jobCtx, job); err != nil {
		jobLogger.Error("failed to transition job to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	jobStart := time.Now()
	for _, pipelineStage := range m.stages {
		if err := m.executeStage(jobCtx, jobLogger, pipelineStage, job); err != nil {
			return err
		}
	}

	// The publishing stage records the terminal state; anything else here
	// means a stage forgot to and the job would otherwise hang in processing.
	if !job.Status.IsTerminal() {
		job.SetCompleted(job.VideoURL, job.ThumbnailURL)
		if err := m.store.Update(jobCtx, job); err != nil {
			m.setLastError(err)
			return err
		}
	}
	m.setLastJob(job)
	jobLogger.Info("job processed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("status", string(job.Status)),
		logging.Duration("job_duration", time.Since(jobStart)),
	)
	return nil
}

func (m *Manager) executeStage(ctx context.Context, jobLogger *slog.Logger, pipelineStage PipelineStage, job *queue.Job) error {
	stageCtx := services.WithStage(ctx, pipelineStage.Name)
	stageLogger := logging.WithContext(stageCtx, jobLogger)
	handler := pipelineStage.Handler
	if handler == nil {
		err := fmt.Errorf("stage %s missing handler", pipelineStage.Name)
		m.handleStageFailure(stageCtx, pipelineStage.Name, job, err)
		m.setLastError(err)
		return err
	}

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
	)

	if err := handler.Prepare(stageCtx, job); err != nil {
		m.handleStageFailure(stageCtx, pipelineStage.Name, job, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(stageCtx, handler, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(stageCtx, pipelineStage.Name, job, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("progress_stage", job.ProgressStage),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastJob(job)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, job *queue.Job) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	execErr := handler.Execute(ctx, job)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, job *queue.Job) error {
	now := time.Now().UTC()
	job.Status = queue.StatusProcessing
	job.ProgressStage = "Starting"
	job.ProgressMessage = "Job picked up for processing"
	job.ProgressPercent = 0
	job.ErrorKind = ""
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastJob(job)

	if m.notifier != nil {
		err := m.notifier.Publish(ctx, notifications.EventJobStarted, notifications.Payload{
			"prompt": job.Prompt,
			"style":  job.Style,
		})
		if err != nil {
			logging.WithContext(ctx, m.logger).Debug("job start notification failed", logging.Error(err))
		}
	}
	return nil
}
