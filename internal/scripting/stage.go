package scripting

import (
	"context"
	"log/slog"
	"strings"

	"keyframe/internal/config"
	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/services/llm"
	"keyframe/internal/stage"
	"keyframe/internal/storyboard"
)

// ScriptService is the completion surface the stage needs.
type ScriptService interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Stage generates and validates the slide script for a job.
type Stage struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   ScriptService
	notifier notifications.Service
}

// New constructs the scripting stage using default collaborators.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	return NewWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ScriptService, notifier notifications.Service) *Stage {
	return &Stage{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "scripting"),
		client:   client,
		notifier: notifier,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.ProgressStage = "Generating script"
	job.ProgressMessage = "Preparing script generation"
	job.ProgressPercent = 0
	job.ErrorKind = ""
	job.ErrorMessage = ""
	logging.WithContext(ctx, s.logger).Info(
		"starting script generation",
		logging.String("style", job.Style),
		logging.String("prompt", job.Prompt),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	policy := storyboard.ResolveStyle(job.Style)

	job.ProgressMessage = "Requesting script from model"
	job.ProgressPercent = 10
	if err := s.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	raw, err := s.client.CompleteJSON(ctx, buildSystemPrompt(policy), buildUserPrompt(policy.Name, job.Prompt))
	if err != nil {
		return services.Wrap(
			services.ErrScriptGeneration, "scripting", "complete",
			"Script request failed; check llm.api_key and connectivity", err)
	}

	var script storyboard.Script
	if err := llm.DecodeLLMJSON(raw, &script); err != nil {
		return services.Wrap(
			services.ErrScriptGeneration, "scripting", "decode",
			"Model response was not a readable script document", err)
	}
	for i := range script.Slides {
		script.Slides[i].Index = i
	}

	if err := storyboard.Validate(script, policy); err != nil {
		return services.Wrap(
			services.ErrScriptValidation, "scripting", "validate",
			"Generated script does not satisfy the style policy", err)
	}
	if !storyboard.WithinTargetRange(script, policy) {
		logger.Warn(
			"script duration outside target range",
			logging.Float64("total_seconds", script.TotalEstimatedDuration()),
			logging.Float64("min_seconds", policy.MinTotalSeconds),
			logging.Float64("max_seconds", policy.MaxTotalSeconds),
		)
	}

	encoded, err := script.Encode()
	if err != nil {
		return services.Wrap(
			services.ErrScriptGeneration, "scripting", "encode",
			"Failed to serialize the generated script", err)
	}

	job.Title = strings.TrimSpace(script.Title)
	job.ScriptJSON = encoded
	job.ProgressMessage = "Script ready"
	job.ProgressPercent = 100
	logger.Info(
		"script generated",
		logging.String("title", job.Title),
		logging.Int("slides", len(script.Slides)),
		logging.Float64("total_seconds", script.TotalEstimatedDuration()),
	)

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notifications.EventScriptReady, notifications.Payload{"title": job.Title}); err != nil {
			logger.Warn("script notification failed", logging.Error(err))
		}
	}
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "scripting"
	if strings.TrimSpace(s.cfg.LLM.APIKey) == "" {
		return stage.Unhealthy(name, "llm api key not configured")
	}
	if err := s.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
