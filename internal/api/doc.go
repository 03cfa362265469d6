// Package api exposes the HTTP surface for submitting prompts and watching
// jobs: POST /api/v1/generate, GET /api/v1/status/:id, GET /api/v1/feed,
// and GET /health.
package api
