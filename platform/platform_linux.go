//go:build linux

package platform

import (
	"context"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/daemon"
)

// systemd implements Platform for Linux. Registration is left to unit files.
type systemd struct {
	unsupportedManager
	initCommPath string
}

func current() Platform {
	return &systemd{initCommPath: "/proc/1/comm"}
}

func (s *systemd) Name() string { return "linux" }

func (s *systemd) SupportsServiceRegistration() bool { return false }

// IsServiceHost reports true when PID 1 is systemd and the process carries a
// systemd invocation id or notify socket.
func (s *systemd) IsServiceHost() (bool, error) {
	if os.Getenv("INVOCATION_ID") == "" && os.Getenv("NOTIFY_SOCKET") == "" {
		return false, nil
	}
	comm, err := os.ReadFile(s.initCommPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(string(comm)) == "systemd", nil
}

// RunService runs fn and reports READY and STOPPING over sd_notify. Without a
// notify socket the notifications are no-ops.
func (s *systemd) RunService(ctx context.Context, _ string, fn ServiceFunc) error {
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()
	return runForeground(ctx, fn, func() {
		_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	})
}
