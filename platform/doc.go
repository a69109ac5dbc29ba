// Package platform abstracts the operating system's service manager.
//
// Mode resolution only ever talks to Capabilities, queried once per run. The
// service wrapper (ServiceHost) and the install/uninstall surface
// (ServiceManager) are used by the host composer and the utility router.
// Current returns the implementation for the running OS; tests use Fake.
package platform
