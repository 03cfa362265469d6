// Package reconcile replaces estimated slide durations with measured
// narration clip lengths so segment encoding matches the audio exactly.
package reconcile
