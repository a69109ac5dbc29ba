// Package component defines lifecycle-managed pieces of a composed host.
//
// The host composer registers components (stores, listeners) in composition
// order; the Registry starts them in that order and stops them in reverse.
// Health is aggregated for the /health endpoint.
package component
