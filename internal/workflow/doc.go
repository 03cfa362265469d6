// Package workflow advances queue jobs through the processing pipeline.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// pending jobs into the ordered stage handlers (scripting, media generation,
// duration reconciliation, assembly, publishing) while capturing progress and
// failure metadata. One job is processed at a time; ordering within a job is
// strict, so a stage never starts before the previous one has persisted its
// result.
//
// Add new lifecycle stages by extending DefaultPipeline; this package is the
// authoritative home for that coordination logic.
package workflow
