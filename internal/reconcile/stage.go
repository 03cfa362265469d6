package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"keyframe/internal/config"
	"keyframe/internal/logging"
	"keyframe/internal/media/duration"
	"keyframe/internal/media/workdir"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/stage"
)

// Stage measures each narration clip and stamps the actual duration onto
// the script. A clip that cannot be measured fails the job; a slide with a
// guessed length would drift out of sync with its narration.
type Stage struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	probe  duration.Probe
}

// New constructs the reconciliation stage with the default probe chain.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewWithProbe(cfg, store, logger, duration.Default(cfg.Tools.FFprobe))
}

// NewWithProbe allows injecting the duration probe (used in tests).
func NewWithProbe(cfg *config.Config, store *queue.Store, logger *slog.Logger, probe duration.Probe) *Stage {
	return &Stage{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "reconcile"),
		probe:  probe,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.ProgressStage = "Measuring narration"
	job.ProgressMessage = "Measuring narration clip durations"
	job.ProgressPercent = 0
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	script, err := stage.ParseScript(job.ScriptJSON)
	if err != nil {
		return err
	}
	layout := workdir.FromDir(job.WorkingDir)

	var total float64
	for i := range script.Slides {
		path := layout.AudioPath(script.Slides[i].Index)
		seconds, err := s.probe.Measure(ctx, path)
		if err != nil {
			return services.Wrap(
				services.ErrDurationMeasurement, "reconcile",
				fmt.Sprintf("slide %d", script.Slides[i].Index),
				"Could not measure narration clip duration", err)
		}
		script.Slides[i].ActualDuration = seconds
		total += seconds
		logger.Info("narration clip measured",
			logging.Int("slide", script.Slides[i].Index),
			logging.Float64("seconds", seconds),
		)
	}

	encoded, err := script.Encode()
	if err != nil {
		return services.Wrap(
			services.ErrDurationMeasurement, "reconcile", "encode",
			"Failed to serialize the reconciled script", err)
	}
	job.ScriptJSON = encoded
	job.ProgressMessage = fmt.Sprintf("Measured %d clips, total %.2fs", len(script.Slides), total)
	job.ProgressPercent = 100
	logger.Info("duration reconciliation complete",
		logging.Int("slides", len(script.Slides)),
		logging.Float64("total_seconds", total),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "reconcile"
	if s.probe == nil {
		return stage.Unhealthy(name, "no duration probe configured")
	}
	return stage.Healthy(name)
}
