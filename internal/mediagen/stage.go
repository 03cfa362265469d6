package mediagen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"keyframe/internal/config"
	"keyframe/internal/fileutil"
	"keyframe/internal/logging"
	"keyframe/internal/media/workdir"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/services/images"
	"keyframe/internal/services/speech"
	"keyframe/internal/stage"
	"keyframe/internal/storyboard"
)

// ImageService generates one frame per call.
type ImageService interface {
	Generate(ctx context.Context, prompt string, opts images.RenderOptions) ([]byte, error)
}

// SpeechService narrates slide text.
type SpeechService interface {
	PickVoice() (string, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Stage fans out image and narration generation across all slides.
type Stage struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	backends map[storyboard.ImageBackend]ImageService
	speech   SpeechService
}

// New constructs the media generation stage using real clients.
func New(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Stage, error) {
	synth, err := speech.NewSynthesizer(ctx, speech.Config{
		Region:          cfg.Speech.Region,
		AccessKeyID:     cfg.Speech.AccessKeyID,
		SecretAccessKey: cfg.Speech.SecretAccessKey,
		Engine:          cfg.Speech.Engine,
		Voices:          cfg.Speech.Voices,
	})
	if err != nil {
		return nil, err
	}
	backends := map[storyboard.ImageBackend]ImageService{
		storyboard.BackendDALLE: images.NewClient(images.Config{
			APIKey:         cfg.Images.DALLE.APIKey,
			BaseURL:        cfg.Images.DALLE.BaseURL,
			Model:          cfg.Images.DALLE.Model,
			TimeoutSeconds: cfg.Images.TimeoutSeconds,
		}, images.DialectDALLE),
		storyboard.BackendFlux: images.NewClient(images.Config{
			APIKey:         cfg.Images.Flux.APIKey,
			BaseURL:        cfg.Images.Flux.BaseURL,
			Model:          cfg.Images.Flux.Model,
			TimeoutSeconds: cfg.Images.TimeoutSeconds,
		}, images.DialectFlux),
	}
	return NewWithDependencies(cfg, store, logger, backends, synth), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, backends map[storyboard.ImageBackend]ImageService, speechSvc SpeechService) *Stage {
	return &Stage{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "mediagen"),
		backends: backends,
		speech:   speechSvc,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.ProgressStage = "Generating media"
	job.ProgressMessage = "Preparing media generation"
	job.ProgressPercent = 0

	layout := workdir.New(s.cfg.Paths.StagingDir, job.ID)
	if err := layout.Ensure(); err != nil {
		return services.Wrap(
			services.ErrMediaGeneration, "mediagen", "prepare workdir",
			"Could not create the job working directory; check staging_dir permissions", err)
	}
	job.WorkingDir = layout.Dir()

	if strings.TrimSpace(job.Voice) == "" {
		voice, err := s.speech.PickVoice()
		if err != nil {
			return services.Wrap(
				services.ErrConfiguration, "mediagen", "pick voice",
				"No narration voices configured", err)
		}
		job.Voice = voice
	}

	logging.WithContext(ctx, s.logger).Info(
		"starting media generation",
		logging.String("working_dir", job.WorkingDir),
		logging.String("voice", job.Voice),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	script, err := stage.ParseScript(job.ScriptJSON)
	if err != nil {
		return err
	}
	policy := storyboard.ResolveStyle(job.Style)
	backend, ok := s.backends[policy.ImageBackend]
	if !ok {
		return services.Wrap(
			services.ErrConfiguration, "mediagen", "select backend",
			fmt.Sprintf("No image backend registered for %q", policy.ImageBackend), nil)
	}

	layout := workdir.FromDir(job.WorkingDir)
	renderOpts := images.RenderOptions{Width: policy.ImageWidth, Height: policy.ImageHeight}
	total := len(script.Slides) * 2
	var done atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	for _, slide := range script.Slides {
		group.Go(func() error {
			frame, err := backend.Generate(groupCtx, slide.ImagePrompt, renderOpts)
			if err != nil {
				return services.Wrap(
					services.ErrMediaGeneration, "mediagen",
					fmt.Sprintf("image slide %d", slide.Index),
					"Image generation failed", err)
			}
			if err := fileutil.WriteFileAtomic(layout.ImagePath(slide.Index), frame, 0o644); err != nil {
				return services.Wrap(
					services.ErrMediaGeneration, "mediagen",
					fmt.Sprintf("image slide %d", slide.Index),
					"Could not write image asset", err)
			}
			logger.Info("slide image ready",
				logging.Int("slide", slide.Index),
				logging.Int64("completed", done.Add(1)),
				logging.Int("total", total),
			)
			return nil
		})
		group.Go(func() error {
			audio, err := s.speech.Synthesize(groupCtx, slide.Narration, job.Voice)
			if err != nil {
				return services.Wrap(
					services.ErrMediaGeneration, "mediagen",
					fmt.Sprintf("narration slide %d", slide.Index),
					"Narration synthesis failed", err)
			}
			if err := fileutil.WriteFileAtomic(layout.AudioPath(slide.Index), audio, 0o644); err != nil {
				return services.Wrap(
					services.ErrMediaGeneration, "mediagen",
					fmt.Sprintf("narration slide %d", slide.Index),
					"Could not write narration asset", err)
			}
			logger.Info("slide narration ready",
				logging.Int("slide", slide.Index),
				logging.Int64("completed", done.Add(1)),
				logging.Int("total", total),
			)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	job.ProgressMessage = fmt.Sprintf("Generated %d images and %d narration clips", len(script.Slides), len(script.Slides))
	job.ProgressPercent = 100
	logger.Info("media generation complete", logging.Int("slides", len(script.Slides)))
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "mediagen"
	if s.cfg.Images.DALLE.APIKey == "" && s.cfg.Images.Flux.APIKey == "" {
		return stage.Unhealthy(name, "no image backend api keys configured")
	}
	if s.speech == nil {
		return stage.Unhealthy(name, "speech synthesizer not configured")
	}
	if _, err := s.speech.PickVoice(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
