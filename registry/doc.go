// Package registry holds the process-wide capability registry: capability
// definitions, per-type registrations, and the composition and model-building
// entry points that tie the application services together.
//
// Registration is validated in three stages (structural, coherence,
// dependency) before any state changes; a rejected batch leaves the registry
// untouched. Queries run under a read lock with atomic counters, so lookups
// stay cheap under concurrent registration.
package registry
