// Package workdir fixes the on-disk layout of a job's working directory.
// Every intermediate artifact is namespaced by job and slide index so
// concurrent per-slide writers never collide, and no other process writes
// into a job's directory.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves artifact paths inside one job's working directory.
type Layout struct {
	dir string
}

// New returns the layout for the job working directory rooted at base.
func New(base string, jobID int64) Layout {
	return Layout{dir: filepath.Join(base, fmt.Sprintf("keyframe-job-%d", jobID))}
}

// FromDir wraps an existing working directory path.
func FromDir(dir string) Layout {
	return Layout{dir: dir}
}

// Dir returns the working directory root.
func (l Layout) Dir() string { return l.dir }

// Ensure creates the working directory when missing.
func (l Layout) Ensure() error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create working directory %q: %w", l.dir, err)
	}
	return nil
}

// Remove deletes the working directory and everything beneath it.
func (l Layout) Remove() error {
	return os.RemoveAll(l.dir)
}

// ImagePath returns the image asset path for a slide index.
func (l Layout) ImagePath(index int) string {
	return filepath.Join(l.dir, fmt.Sprintf("image_%d.jpg", index))
}

// AudioPath returns the narration asset path for a slide index.
func (l Layout) AudioPath(index int) string {
	return filepath.Join(l.dir, fmt.Sprintf("slide_%d.mp3", index))
}

// SegmentPath returns the encoded video segment path for a slide index.
func (l Layout) SegmentPath(index int) string {
	return filepath.Join(l.dir, fmt.Sprintf("segment_%d.mp4", index))
}

// AudioConcatList returns the concat-demuxer manifest for the audio join.
func (l Layout) AudioConcatList() string {
	return filepath.Join(l.dir, "audio_concat.txt")
}

// SegmentConcatList returns the concat-demuxer manifest for the video join.
func (l Layout) SegmentConcatList() string {
	return filepath.Join(l.dir, "concat_list.txt")
}

// NarrationPath returns the concatenated narration track path.
func (l Layout) NarrationPath() string {
	return filepath.Join(l.dir, "voiceover_full.mp3")
}

// OutputPath returns the final muxed video path.
func (l Layout) OutputPath() string {
	return filepath.Join(l.dir, "final_video.mp4")
}

// ThumbnailPath returns the extracted thumbnail frame path.
func (l Layout) ThumbnailPath() string {
	return filepath.Join(l.dir, "thumbnail.jpg")
}
