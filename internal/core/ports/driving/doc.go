// Package driving provides interfaces for user-facing adapters
// (primary/inbound ports).
//
// The CLI depends on these interfaces; the core services implement
// them. This keeps command wiring independent of service internals.
package driving
