// Package service implements business logic for the Atelier application.
//
// Services coordinate between the HTTP handlers and the repository layer,
// implementing validation, id assignment and event publishing.
//
// # Services
//
// GraphService manages spaces, blocks, contents and links, the global
// cross-space view, and fragment import/export via codecs.
//
// LayoutService rearranges blocks with the force-directed engine. A local
// run positions the blocks of one space and persists x,y; a global run
// positions every block across spaces and persists x_global,y_global.
// Runs are bounded in number and duration; a run that exceeds its timeout
// is discarded without touching stored positions.
//
// # Event System
//
// Services publish events via EventBus for real-time updates to connected
// clients via Server-Sent Events (SSE).
package service
