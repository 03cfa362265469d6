// Package queue persists video generation jobs in SQLite and is the
// job-status collaborator for the pipeline: the workflow driver records
// every stage-boundary transition here, and the HTTP API reads job progress
// and results from the same store.
package queue
