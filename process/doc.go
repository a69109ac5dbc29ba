// Package process runs short-lived helper commands such as netsh, sc and
// xdg-open, capturing their output.
//
// Runner is the seam used by the utility router and the browser launcher so
// tests can record commands instead of executing them.
package process
