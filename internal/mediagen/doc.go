// Package mediagen produces the per-slide assets for a job: one generated
// image and one narrated clip per slide, fanned out concurrently. The stage
// is all-or-nothing; a single failed slide fails the whole job and cancels
// the remaining work.
package mediagen
