// Package driving provides interfaces implemented by the core services
// and consumed by user-facing adapters (primary/inbound ports).
package driving
