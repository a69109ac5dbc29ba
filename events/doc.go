// Package events is the in-process lifecycle event aggregator.
//
// Publish is synchronous: every subscriber has returned before Publish does.
// A panicking subscriber is logged and does not stop the others.
package events
