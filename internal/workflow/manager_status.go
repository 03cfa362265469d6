package workflow

import (
	"context"

	"keyframe/internal/logging"
	"keyframe/internal/queue"
	"keyframe/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastJob     *queue.Job
	Queue       queue.HealthSummary
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastJob := m.lastJob
	stages := m.stages
	m.mu.RUnlock()

	counts, err := m.store.Health(ctx)
	if err != nil {
		logging.WithContext(ctx, m.logger).Warn("failed to read queue counts", logging.Error(err))
	}

	health := make(map[string]stage.Health, len(stages))
	for _, pipelineStage := range stages {
		if pipelineStage.Handler == nil {
			continue
		}
		health[pipelineStage.Name] = pipelineStage.Handler.HealthCheck(ctx)
	}

	summary := StatusSummary{Running: running, Queue: counts, StageHealth: health}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastJob != nil {
		copied := *lastJob
		summary.LastJob = &copied
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		copied := *job
		m.lastJob = &copied
	} else {
		m.lastJob = nil
	}
	m.mu.Unlock()
}
