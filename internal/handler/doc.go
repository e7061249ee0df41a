// Package handler implements HTTP request handlers for the Atelier API.
//
// # Handlers
//
// Handler serves spaces, blocks, contents and links, the global graph view,
// fragment import/export and the two layout operations. NewRouter mounts
// them on a chi router together with the SSE stream, Prometheus metrics and
// a health probe.
//
// # API Design
//
// All handlers follow REST conventions:
//   - GET for retrieval
//   - POST for creation
//   - PUT for updates
//   - DELETE for removal
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201,
// 204). Error responses return JSON with {error, details} structure; the
// status is derived from the domain sentinel the error wraps. A layout run
// that exceeds its timeout answers 504 and leaves stored positions untouched.
package handler
