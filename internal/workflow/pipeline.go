package workflow

import (
	"context"
	"log/slog"

	"keyframe/internal/assembly"
	"keyframe/internal/config"
	"keyframe/internal/mediagen"
	"keyframe/internal/publishing"
	"keyframe/internal/queue"
	"keyframe/internal/reconcile"
	"keyframe/internal/scripting"
	"keyframe/internal/stage"
)

// PipelineStage pairs a stage handler with the name used in logs and error
// context.
type PipelineStage struct {
	Name    string
	Handler stage.Handler
}

// DefaultPipeline builds the ordered production stage set.
func DefaultPipeline(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) ([]PipelineStage, error) {
	media, err := mediagen.New(ctx, cfg, store, logger)
	if err != nil {
		return nil, err
	}
	publish, err := publishing.New(ctx, cfg, store, logger)
	if err != nil {
		return nil, err
	}
	return []PipelineStage{
		{Name: "scripting", Handler: scripting.New(cfg, store, logger)},
		{Name: "mediagen", Handler: media},
		{Name: "reconcile", Handler: reconcile.New(cfg, store, logger)},
		{Name: "assembly", Handler: assembly.New(cfg, store, logger)},
		{Name: "publishing", Handler: publish},
	}, nil
}
