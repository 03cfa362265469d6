// Package llm wraps an OpenAI-compatible chat completion endpoint for
// script generation. Requests are JSON-only and retried with exponential
// backoff on transient failures.
package llm
