// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding and reranker models, the vector
// index, the durable document cache, loaders, the LLM, and stores.
package driven
