// Package observability exposes engine activity to Prometheus and slog:
// a registry middleware timing every function invocation and lifecycle
// hooks counting and logging graph node visits.
package observability
