// Package stageexec executes the processing pipeline for a single job
// without the daemon's polling loop or heartbeats. The CLI process command
// uses it for one-shot runs.
package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/workflow"
)

// Options controls stage execution and queue persistence behavior.
type Options struct {
	Logger   *slog.Logger
	Store    *queue.Store
	Notifier notifications.Service
	Stages   []workflow.PipelineStage
	Job      *queue.Job
}

// Run executes the pipeline stages in order and applies the queue
// transition semantics used by one-shot workflows. The job ends completed
// or failed.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("queue store is required")
	}
	if opts.Job == nil {
		return errors.New("queue job is required")
	}
	if len(opts.Stages) == 0 {
		return errors.New("pipeline stages are required")
	}

	job := opts.Job
	jobCtx := services.WithJobID(ctx, job.ID)

	now := time.Now().UTC()
	job.Status = queue.StatusProcessing
	job.ProgressStage = "Starting"
	job.ProgressMessage = "Job picked up for processing"
	job.ProgressPercent = 0
	job.ErrorKind = ""
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
	if err := opts.Store.Update(jobCtx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	for _, pipelineStage := range opts.Stages {
		if err := runStage(jobCtx, opts, pipelineStage, job); err != nil {
			return err
		}
	}

	if !job.Status.IsTerminal() {
		job.SetCompleted(job.VideoURL, job.ThumbnailURL)
		if err := opts.Store.Update(jobCtx, job); err != nil {
			return fmt.Errorf("persist completion: %w", err)
		}
	}
	return nil
}

func runStage(ctx context.Context, opts Options, pipelineStage workflow.PipelineStage, job *queue.Job) error {
	stageCtx := services.WithStage(ctx, pipelineStage.Name)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if pipelineStage.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", pipelineStage.Name)
	}

	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
	)

	if err := pipelineStage.Handler.Prepare(stageCtx, job); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, pipelineStage.Name, job, err)
	}
	if err := opts.Store.Update(stageCtx, job); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := pipelineStage.Handler.Execute(stageCtx, job); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, pipelineStage.Name, job, err)
	}

	job.LastHeartbeat = nil
	if err := opts.Store.Update(stageCtx, job); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("progress_stage", strings.TrimSpace(job.ProgressStage)),
		logging.String("progress_message", strings.TrimSpace(job.ProgressMessage)),
	)
	return nil
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, stageName string, job *queue.Job, stageErr error) error {
	kind := services.Kind(stageErr)
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = stageName + " failed"
	}
	job.SetFailed(kind, message)

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", kind),
		logging.Error(stageErr),
	)
	if err := opts.Store.Update(ctx, job); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	if opts.Notifier != nil {
		err := opts.Notifier.Publish(ctx, notifications.EventJobFailed, notifications.Payload{
			"prompt": job.Prompt,
			"error":  job.ErrorMessage,
		})
		if err != nil {
			logger.Debug("failure notification failed", logging.Error(err))
		}
	}
	return stageErr
}
