package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"keyframe/internal/config"
	"keyframe/internal/fileutil"
	"keyframe/internal/logging"
	"keyframe/internal/media/ffmpeg"
	"keyframe/internal/media/ffprobe"
	"keyframe/internal/media/workdir"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/stage"
	"keyframe/internal/storyboard"
)

// Segment encoding parameters. Every segment shares these so the concat
// demuxer can join them with stream copy.
const (
	segmentWidth   = 1920
	segmentHeight  = 1080
	segmentFPS     = 30
	segmentPreset  = "medium"
	segmentCRF     = 23
	audioBitrate   = "192k"
	minOutputBytes = 1
)

// InspectFunc probes the muxed output during verification.
type InspectFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Stage assembles slide assets into the final video.
type Stage struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	runner  *ffmpeg.Runner
	inspect InspectFunc
}

// New constructs the assembly stage with a real ffmpeg runner and ffprobe.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewWithDependencies(cfg, store, logger, ffmpeg.NewRunner(cfg.Tools.FFmpeg), ffprobe.Inspect)
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, runner *ffmpeg.Runner, inspect InspectFunc) *Stage {
	if inspect == nil {
		inspect = ffprobe.Inspect
	}
	return &Stage{
		store:   store,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "assembly"),
		runner:  runner,
		inspect: inspect,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.ProgressStage = "Assembling video"
	job.ProgressMessage = "Preparing assembly"
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

	if err := s.encodeSegments(ctx, job, layout, script); err != nil {
		return err
	}
	if err := s.concatAndMux(ctx, job, layout, script); err != nil {
		return err
	}
	if err := s.verify(ctx, layout); err != nil {
		return err
	}

	job.FinalFile = layout.OutputPath()
	job.ProgressMessage = "Video assembled"
	job.ProgressPercent = 100
	logger.Info("assembly complete", logging.String("output", job.FinalFile))
	return nil
}

// encodeSegments renders one fixed-duration video segment per slide. All
// segments share codec parameters so the later concat can stream-copy.
func (s *Stage) encodeSegments(ctx context.Context, job *queue.Job, layout workdir.Layout, script storyboard.Script) error {
	logger := logging.WithContext(ctx, s.logger)
	job.ProgressMessage = "Encoding slide segments"

	for _, slide := range script.Slides {
		seconds := slide.EffectiveDuration()
		if seconds <= 0 {
			return services.Wrap(
				services.ErrSegmentEncode, "assembly",
				fmt.Sprintf("segment %d", slide.Index),
				"Slide has no usable duration; rerun duration measurement", nil)
		}
		args := []string{
			"-loop", "1",
			"-i", layout.ImagePath(slide.Index),
			"-c:v", "libx264",
			"-t", strconv.FormatFloat(seconds, 'f', -1, 64),
			"-pix_fmt", "yuv420p",
			"-vf", fmt.Sprintf("scale=%d:%d", segmentWidth, segmentHeight),
			"-r", strconv.Itoa(segmentFPS),
			"-preset", segmentPreset,
			"-crf", strconv.Itoa(segmentCRF),
			layout.SegmentPath(slide.Index),
		}
		if err := s.runner.Run(ctx, args...); err != nil {
			return services.Wrap(
				services.ErrSegmentEncode, "assembly",
				fmt.Sprintf("segment %d", slide.Index),
				"Segment encode failed", err)
		}
		if !fileutil.NonEmptyFile(layout.SegmentPath(slide.Index)) {
			return services.Wrap(
				services.ErrSegmentEncode, "assembly",
				fmt.Sprintf("segment %d", slide.Index),
				"Segment encode produced no output", nil)
		}
		logger.Info("segment encoded",
			logging.Int("slide", slide.Index),
			logging.Float64("seconds", seconds),
		)
	}
	return nil
}

// concatAndMux joins the narration clips with stream copy, then joins the
// segments and muxes the narration track into the final container.
func (s *Stage) concatAndMux(ctx context.Context, job *queue.Job, layout workdir.Layout, script storyboard.Script) error {
	job.ProgressMessage = "Concatenating and muxing"

	audioPaths := make([]string, 0, len(script.Slides))
	segmentPaths := make([]string, 0, len(script.Slides))
	for _, slide := range script.Slides {
		audioPaths = append(audioPaths, layout.AudioPath(slide.Index))
		segmentPaths = append(segmentPaths, layout.SegmentPath(slide.Index))
	}

	if err := writeConcatList(layout.AudioConcatList(), audioPaths); err != nil {
		return services.Wrap(services.ErrAssembly, "assembly", "audio concat list", "Could not write concat list", err)
	}
	if err := s.runner.Run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", layout.AudioConcatList(),
		"-c", "copy",
		layout.NarrationPath(),
	); err != nil {
		return services.Wrap(services.ErrAssembly, "assembly", "audio concat", "Narration concat failed", err)
	}

	if err := writeConcatList(layout.SegmentConcatList(), segmentPaths); err != nil {
		return services.Wrap(services.ErrAssembly, "assembly", "segment concat list", "Could not write concat list", err)
	}
	if err := s.runner.Run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", layout.SegmentConcatList(),
		"-i", layout.NarrationPath(),
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-movflags", "+faststart",
		"-shortest",
		layout.OutputPath(),
	); err != nil {
		return services.Wrap(services.ErrAssembly, "assembly", "mux", "Concat and mux failed", err)
	}
	return nil
}

// verify confirms the muxed output is a playable container with both
// streams present.
func (s *Stage) verify(ctx context.Context, layout workdir.Layout) error {
	output := layout.OutputPath()
	info, err := os.Stat(output)
	if err != nil {
		return services.Wrap(
			services.ErrAssemblyVerification, "assembly", "verify",
			"Muxed output file is missing", err)
	}
	if info.Size() < minOutputBytes {
		return services.Wrap(
			services.ErrAssemblyVerification, "assembly", "verify",
			"Muxed output file is empty", nil)
	}

	result, err := s.inspect(ctx, s.cfg.Tools.FFprobe, output)
	if err != nil {
		return services.Wrap(
			services.ErrAssemblyVerification, "assembly", "verify",
			"Could not inspect muxed output", err)
	}
	if result.VideoStreamCount() == 0 || result.AudioStreamCount() == 0 {
		return services.Wrap(
			services.ErrAssemblyVerification, "assembly", "verify",
			fmt.Sprintf("Muxed output missing streams (video=%d audio=%d)", result.VideoStreamCount(), result.AudioStreamCount()),
			nil)
	}
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "assembly"
	if s.runner == nil {
		return stage.Unhealthy(name, "ffmpeg runner not configured")
	}
	return stage.Healthy(name)
}

func writeConcatList(path string, files []string) error {
	var b strings.Builder
	for _, file := range files {
		fmt.Fprintf(&b, "file '%s'\n", file)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
