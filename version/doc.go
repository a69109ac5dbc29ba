// Package version carries the application name and build metadata.
//
// Build metadata is set at link time:
//
//	go build -ldflags "-X github.com/kbukum/apphost/version.Version=1.4.0"
package version
