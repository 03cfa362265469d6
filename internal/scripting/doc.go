// Package scripting turns a user prompt into a validated slide script.
// The style policy fixes the slide count, word budget, and target length;
// the generated script is persisted on the job for the later stages.
package scripting
