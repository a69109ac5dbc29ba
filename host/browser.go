package host

import (
	"context"
	"fmt"
	"runtime"

	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/process"
	"github.com/kbukum/apphost/server"
)

// BrowserHook opens the first binding in the default browser once the
// host is ready, unless launch_browser is off or --nobrowser was given.
func BrowserHook(runner process.Runner) ForegroundHook {
	return func(b *Builder) {
		if !b.Config().LaunchBrowser || b.StartupContext().NoBrowser() {
			return
		}
		log := b.Logger()
		b.OnReady(func(ctx context.Context, bindings []server.Binding) {
			if len(bindings) == 0 {
				return
			}
			url := LocalURL(bindings[0])
			if _, err := runner.Run(ctx, OpenCommand(runtime.GOOS, url)); err != nil {
				log.Warn("Unable to open browser", logger.Fields("url", url, logger.FieldError, err.Error()))
				return
			}
			log.Debug("Browser opened", logger.Fields("url", url))
		})
	}
}

// LocalURL rewrites wildcard addresses to localhost.
func LocalURL(b server.Binding) string {
	host := b.Address
	if server.IsWildcard(host) {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s:%d/", b.Scheme, host, b.Port)
}

// OpenCommand returns the command that opens url on goos.
func OpenCommand(goos, url string) process.Command {
	switch goos {
	case "windows":
		return process.Command{Binary: "cmd", Args: []string{"/c", "start", "", url}}
	case "darwin":
		return process.Command{Binary: "open", Args: []string{url}}
	default:
		return process.Command{Binary: "xdg-open", Args: []string{url}}
	}
}
