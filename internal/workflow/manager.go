package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"keyframe/internal/config"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
)

// Manager coordinates queue processing using the registered pipeline stages.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	stages       []PipelineStage
	pollInterval time.Duration
	retryDelay   time.Duration

	heartbeat *HeartbeatMonitor

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager constructs a workflow manager wired with the production stages.
func NewManager(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Manager, error) {
	stages, err := DefaultPipeline(ctx, cfg, store, logger)
	if err != nil {
		return nil, err
	}
	return NewManagerWithPipeline(cfg, store, logger, notifications.NewService(cfg), stages), nil
}

// NewManagerWithPipeline constructs a workflow manager with explicit
// collaborators (used in tests).
func NewManagerWithPipeline(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, stages []PipelineStage) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		stages:       stages,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryDelay:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}
