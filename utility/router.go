package utility

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/apphost/config"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/platform"
	"github.com/kbukum/apphost/process"
	"github.com/kbukum/apphost/startup"
	"github.com/kbukum/apphost/version"
)

// ConfigSource returns the resolved configuration. Routes that need no
// configuration never call it.
type ConfigSource func() (*config.HostConfig, error)

// everyone may listen on the reserved URL
const urlACLSDDL = "D:(A;;GX;;;S-1-1-0)"

// Options wires a Router.
type Options struct {
	StartupContext *startup.Context
	Platform       platform.Platform
	Runner         process.Runner
	Config         ConfigSource
	// Out receives the help text. Defaults to os.Stdout.
	Out io.Writer
	// Executable is the binary registered as the service. Defaults to
	// os.Executable.
	Executable string
	Logger     *logger.Logger
}

// Router dispatches a utility mode to its handler.
type Router struct {
	opts Options
	log  *logger.Logger
}

// NewRouter creates a Router.
func NewRouter(opts Options) *Router {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Router{opts: opts, log: opts.Logger.WithComponent("utility")}
}

// Route runs the handler for mode and returns when it completes.
func (r *Router) Route(ctx context.Context, mode startup.Mode) error {
	r.log.Debug("Routing utility mode", logger.Fields(logger.FieldMode, mode.String()))

	switch mode {
	case startup.ModeHelp:
		return r.help()
	case startup.ModeRegisterURL:
		return r.registerURL(ctx)
	case startup.ModeInstallService:
		return r.installService()
	case startup.ModeUninstallService:
		return r.uninstallService()
	default:
		return fmt.Errorf("utility: no route for mode %s", mode)
	}
}

func (r *Router) help() error {
	_, err := fmt.Fprintf(r.opts.Out, "Usage: %s [options]\n\n%s", version.AppName, startup.Usage())
	return err
}

// ReservationURL is the URL reserved for the HTTP port.
func ReservationURL(port int) string {
	return fmt.Sprintf("http://+:%d/", port)
}

func (r *Router) registerURL(ctx context.Context) error {
	if !r.opts.Platform.SupportsServiceRegistration() {
		return platform.ErrUnsupported
	}
	cfg, err := r.opts.Config()
	if err != nil {
		return err
	}

	url := ReservationURL(cfg.Port)
	res, err := r.opts.Runner.Run(ctx, process.Command{
		Binary: "netsh",
		Args:   []string{"http", "add", "urlacl", "url=" + url, "sddl=" + urlACLSDDL},
	})
	if err != nil {
		return fmt.Errorf("reserve %s: %s: %w", url, res.Output(), err)
	}
	r.log.Info("URL reserved", logger.Fields("url", url, "output", res.Output()))
	return nil
}

func (r *Router) installService() error {
	exe := r.opts.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return fmt.Errorf("resolve executable: %w", err)
		}
	}

	spec := platform.ServiceSpec{
		Name:        version.ServiceName,
		DisplayName: version.AppName,
		Description: version.AppName + " background service",
		Executable:  exe,
	}
	if dir := r.opts.StartupContext.DataDir(); dir != "" {
		spec.Args = []string{"--" + startup.FlagData + "=" + dir}
	}

	if err := r.opts.Platform.Install(spec); err != nil {
		return fmt.Errorf("install service %s: %w", spec.Name, err)
	}
	r.log.Info("Service installed", logger.Fields("service", spec.Name, "executable", exe))

	if err := r.opts.Platform.Start(spec.Name); err != nil {
		return fmt.Errorf("start service %s: %w", spec.Name, err)
	}
	r.log.Info("Service started", logger.Fields("service", spec.Name))
	return nil
}

func (r *Router) uninstallService() error {
	name := version.ServiceName
	if err := r.opts.Platform.Stop(name); err != nil {
		// a stopped service cannot be stopped again; removal still proceeds
		r.log.Warn("Service stop failed", logger.Fields("service", name, logger.FieldError, err.Error()))
	}
	if err := r.opts.Platform.Uninstall(name); err != nil {
		return fmt.Errorf("uninstall service %s: %w", name, err)
	}
	r.log.Info("Service uninstalled", logger.Fields("service", name))
	return nil
}
