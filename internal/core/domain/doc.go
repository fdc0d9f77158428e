// Package domain contains the core types of the askdoc retrieval pipeline:
// document sections, chunks, identities and the built document index.
// It has no dependencies on adapters or external services.
package domain
