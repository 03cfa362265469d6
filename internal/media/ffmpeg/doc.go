// Package ffmpeg runs the ffmpeg binary. The exec step is injectable so
// stages can be tested without a real encoder installed.
package ffmpeg
