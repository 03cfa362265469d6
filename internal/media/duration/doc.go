// Package duration measures narration clip lengths. The MP3 decoder probe
// is authoritative; ffprobe serves as the fallback when a clip cannot be
// decoded directly.
package duration
