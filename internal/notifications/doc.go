// Package notifications publishes job lifecycle events to ntfy. Installs
// without a topic configured get a noop service.
package notifications
