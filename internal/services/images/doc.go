// Package images wraps OpenAI-compatible image generation endpoints. Two
// request dialects are supported: the DALL-E shape (size plus quality) and
// the Flux shape (explicit width, height, and inference steps). Responses
// are requested as base64 and returned decoded.
package images
