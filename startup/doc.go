// Package startup parses process arguments into an immutable Context and
// resolves the runtime Mode for the run.
package startup
