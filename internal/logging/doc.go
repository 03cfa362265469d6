// Package logging wires log/slog with the console and JSON handlers used by
// the keyframe daemon and CLI, plus helpers that derive structured fields
// from the request context.
package logging
