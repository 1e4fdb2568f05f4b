// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// These are the seams between the core pipeline and the outside world:
// the embedding and generation gateways, text extraction, the vector
// index, durable storage, and configuration. The core services depend
// only on these interfaces; adapters implement them.
package driven
