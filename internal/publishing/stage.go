package publishing

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"keyframe/internal/config"
	"keyframe/internal/logging"
	"keyframe/internal/media/ffmpeg"
	"keyframe/internal/media/workdir"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/services/storage"
	"keyframe/internal/stage"
)

// Stage extracts a thumbnail from the finished video, hands both artifacts
// to the configured publisher, and marks the job completed. When the
// publisher is remote the working directory is removed afterwards; a local
// publish leaves it in place because the artifacts live there.
type Stage struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	runner    *ffmpeg.Runner
	publisher storage.Publisher
	notifier  notifications.Service
	remote    bool
}

// New constructs the publishing stage. Remote publishing is selected when a
// storage bucket is configured; otherwise artifacts stay on local disk.
func New(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Stage, error) {
	storageCfg := storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	}

	var publisher storage.Publisher = storage.LocalPublisher{}
	remote := storageCfg.Enabled()
	if remote {
		s3Publisher, err := storage.NewS3Publisher(ctx, storageCfg)
		if err != nil {
			return nil, err
		}
		publisher = s3Publisher
	}

	s := NewWithDependencies(cfg, store, logger, ffmpeg.NewRunner(cfg.Tools.FFmpeg), publisher, notifications.NewService(cfg))
	s.remote = remote
	return s, nil
}

// NewWithDependencies allows injecting collaborators (used in tests). The
// returned stage treats the publisher as local; tests exercising remote
// cleanup flip that through WithRemote.
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, runner *ffmpeg.Runner, publisher storage.Publisher, notifier notifications.Service) *Stage {
	return &Stage{
		store:     store,
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "publishing"),
		runner:    runner,
		publisher: publisher,
		notifier:  notifier,
	}
}

// WithRemote marks the publisher as remote, enabling working directory
// cleanup after a successful publish.
func (s *Stage) WithRemote() *Stage {
	s.remote = true
	return s
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.ProgressStage = "Publishing"
	job.ProgressMessage = "Publishing final video"
	job.ProgressPercent = 0
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	layout := workdir.FromDir(job.WorkingDir)

	videoPath := layout.OutputPath()
	if info, err := os.Stat(videoPath); err != nil || info.Size() == 0 {
		return services.Wrap(
			services.ErrPublish, "publishing", "stat",
			"Final video is missing from the working directory", err)
	}

	thumbnailPath := layout.ThumbnailPath()
	if err := s.extractThumbnail(ctx, videoPath, thumbnailPath); err != nil {
		return services.Wrap(
			services.ErrPublish, "publishing", "thumbnail",
			"Thumbnail extraction failed", err)
	}

	job.ProgressMessage = "Uploading video and thumbnail"
	job.ProgressPercent = 40
	if err := s.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	result, err := s.publisher.Publish(ctx, job.PublicID, videoPath, thumbnailPath)
	if err != nil {
		return services.Wrap(
			services.ErrPublish, "publishing", "upload",
			"Publishing the final video failed", err)
	}

	job.SetCompleted(result.VideoURL, result.ThumbnailURL)
	job.ProgressStage = "Completed"
	job.ProgressMessage = "Video published"
	logger.Info("job published",
		logging.String("video_url", result.VideoURL),
		logging.String("thumbnail_url", result.ThumbnailURL),
	)

	if s.remote {
		if err := layout.Remove(); err != nil {
			logger.Warn("failed to remove working directory", logging.Error(err))
		} else {
			job.FinalFile = ""
		}
	}

	if s.notifier != nil {
		err := s.notifier.Publish(ctx, notifications.EventJobCompleted, notifications.Payload{
			"title":     job.Title,
			"video_url": result.VideoURL,
		})
		if err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func (s *Stage) extractThumbnail(ctx context.Context, videoPath, thumbnailPath string) error {
	args := []string{
		"-i", videoPath,
		"-ss", "00:00:00",
		"-frames:v", "1",
		"-q:v", "2",
		thumbnailPath,
	}
	if err := s.runner.Run(ctx, args...); err != nil {
		return err
	}
	info, err := os.Stat(thumbnailPath)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrPublish, "publishing", "thumbnail", "Thumbnail file is empty", nil)
	}
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "publishing"
	if s.publisher == nil {
		return stage.Unhealthy(name, "no publisher configured")
	}
	if s.remote && strings.TrimSpace(s.cfg.Storage.Bucket) == "" {
		return stage.Unhealthy(name, "storage bucket not configured")
	}
	return stage.Healthy(name)
}
