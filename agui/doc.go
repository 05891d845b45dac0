// Package agui integrates the task loop with the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an open, event-based protocol that
// standardizes how AI agents connect to user-facing applications. This
// package provides:
//
//   - [Mapper]: converts task lifecycle events to AG-UI protocol events so a
//     frontend can render the run.
//   - [Broker]: an operator surface backed by the frontend; blocking
//     questions are published to the UI and answered asynchronously.
//   - Message conversion utilities: [ToMessages], [FromMessages].
//
// The package does not provide HTTP handlers or transports. Callers wire the
// mapped events into the AG-UI SDK's SSE writer or their own transport.
package agui
