// Package daemon ties the long-running services together: the workflow
// manager, the HTTP API, and the single-instance lock.
package daemon
