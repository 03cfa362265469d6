package duration

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"keyframe/internal/media/ffprobe"
)

// Probe measures the playable length of an audio file in seconds.
type Probe interface {
	Measure(ctx context.Context, path string) (float64, error)
}

// MP3Probe decodes the MP3 frame stream to compute an exact duration.
type MP3Probe struct{}

// Measure decodes the file and derives seconds from the PCM length.
func (MP3Probe) Measure(ctx context.Context, path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("mp3 probe: open %s: %w", path, err)
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return 0, fmt.Errorf("mp3 probe: decode %s: %w", path, err)
	}
	rate := decoder.SampleRate()
	if rate <= 0 {
		return 0, fmt.Errorf("mp3 probe: invalid sample rate in %s", path)
	}
	// Length reports decoded bytes: 16-bit stereo, 4 bytes per sample.
	samples := decoder.Length() / 4
	seconds := float64(samples) / float64(rate)
	if seconds <= 0 {
		return 0, fmt.Errorf("mp3 probe: zero duration for %s", path)
	}
	return seconds, nil
}

// FFprobeProbe asks ffprobe for the audio stream duration.
type FFprobeProbe struct {
	Binary string
}

// Measure inspects the file and returns the audio duration.
func (p FFprobeProbe) Measure(ctx context.Context, path string) (float64, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, err
	}
	seconds := result.AudioDurationSeconds()
	if seconds <= 0 {
		return 0, fmt.Errorf("ffprobe probe: zero duration for %s", path)
	}
	return seconds, nil
}

// Chain tries each probe in order and returns the first measurement.
type Chain []Probe

// Measure runs the probes until one succeeds.
func (c Chain) Measure(ctx context.Context, path string) (float64, error) {
	if len(c) == 0 {
		return 0, errors.New("duration chain: no probes configured")
	}
	var errs []error
	for _, probe := range c {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		seconds, err := probe.Measure(ctx, path)
		if err == nil {
			return seconds, nil
		}
		errs = append(errs, err)
	}
	return 0, fmt.Errorf("duration chain: all probes failed: %w", errors.Join(errs...))
}

// Default returns the standard probe order: direct MP3 decode first,
// ffprobe as fallback.
func Default(ffprobeBinary string) Chain {
	return Chain{MP3Probe{}, FFprobeProbe{Binary: ffprobeBinary}}
}
