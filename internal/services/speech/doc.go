// Package speech synthesizes narration audio through Amazon Polly. A job
// picks one voice from the configured pool and every slide in that job is
// narrated with it.
package speech
