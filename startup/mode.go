package startup

import (
	"github.com/kbukum/apphost/errors"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/platform"
)

// Mode is the runtime shape of a run.
type Mode int

const (
	ModeInteractive Mode = iota
	ModeHelp
	ModeRegisterURL
	ModeInstallService
	ModeUninstallService
	ModeService
	// ModeUtility is the generic one-shot utility shape. ResolveMode never
	// returns it; the utility router uses it as its fallback route.
	ModeUtility
)

var modeNames = map[Mode]string{
	ModeInteractive:      "interactive",
	ModeHelp:             "help",
	ModeRegisterURL:      "register-url",
	ModeInstallService:   "install-service",
	ModeUninstallService: "uninstall-service",
	ModeService:          "service",
	ModeUtility:          "utility",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// IsUtility reports whether the mode runs through the utility router
// instead of a network host.
func (m Mode) IsUtility() bool {
	switch m {
	case ModeHelp, ModeRegisterURL, ModeInstallService, ModeUninstallService, ModeUtility:
		return true
	}
	return false
}

// ResolveMode picks the mode for the run. First match wins: help, then the
// registration flags (ignored when the platform cannot register services),
// then the service-host probe, then interactive. A failing probe is logged
// and treated as false.
func ResolveMode(c *Context, caps platform.Capabilities, log *logger.Logger) Mode {
	if log == nil {
		log = logger.Nop()
	}

	if c.Help() {
		return ModeHelp
	}

	if caps.SupportsServiceRegistration() {
		switch {
		case c.RegisterURL():
			return ModeRegisterURL
		case c.InstallService():
			return ModeInstallService
		case c.UninstallService():
			return ModeUninstallService
		}
	} else if c.RegisterURL() || c.InstallService() || c.UninstallService() {
		log.Debug("Service registration flags ignored on this platform", map[string]interface{}{
			logger.FieldPlatform: caps.Name(),
		})
	}

	isService, err := caps.IsServiceHost()
	if err != nil {
		probeErr := errors.PlatformProbeFailure(err)
		log.Error(probeErr.Message, map[string]interface{}{
			logger.FieldPlatform: caps.Name(),
			logger.FieldKind:     string(probeErr.Kind),
			logger.FieldError:    err.Error(),
		})
		isService = false
	}
	if isService {
		return ModeService
	}
	return ModeInteractive
}
