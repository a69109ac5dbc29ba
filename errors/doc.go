// Package errors defines the tagged error value used across startup.
//
// Every failure that can end a run is a *StartupError carrying a Kind. Callers
// branch on the kind with KindOf, Is and IsFatal rather than on concrete
// types, and Wrap collapses anything untagged into KindUnhandled.
package errors
