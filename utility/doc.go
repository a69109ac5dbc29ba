// Package utility handles the one-shot modes: help, URL reservation and
// service install or uninstall. None of them binds a listener.
package utility
