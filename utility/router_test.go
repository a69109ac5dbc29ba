package utility

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/apphost/config"
	apperrors "github.com/kbukum/apphost/errors"
	"github.com/kbukum/apphost/platform"
	"github.com/kbukum/apphost/process"
	"github.com/kbukum/apphost/startup"
)

type fixture struct {
	router      *Router
	platform    *platform.Fake
	runner      *process.Recorder
	out         *bytes.Buffer
	configCalls int
}

func newFixture(t *testing.T, args ...string) *fixture {
	t.Helper()
	f := &fixture{
		platform: &platform.Fake{Registration: true},
		runner:   &process.Recorder{},
		out:      &bytes.Buffer{},
	}
	f.router = NewRouter(Options{
		StartupContext: startup.MustParse(args...),
		Platform:       f.platform,
		Runner:         f.runner,
		Out:            f.out,
		Executable:     "/opt/apphost/apphost",
		Config: func() (*config.HostConfig, error) {
			f.configCalls++
			return &config.HostConfig{Port: 8787}, nil
		},
	})
	return f
}

func TestRoute_Help(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Route(context.Background(), startup.ModeHelp))

	assert.Contains(t, f.out.String(), "Usage: AppHost")
	assert.Contains(t, f.out.String(), "--install-service")
	assert.Zero(t, f.configCalls, "help must not read configuration")
	assert.Empty(t, f.runner.Commands())
	assert.Empty(t, f.platform.Calls())
}

func TestRoute_RegisterURL(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Route(context.Background(), startup.ModeRegisterURL))

	cmds := f.runner.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "netsh", cmds[0].Binary)
	assert.Equal(t, "netsh http add urlacl url=http://+:8787/ sddl=D:(A;;GX;;;S-1-1-0)", cmds[0].String())
	assert.Equal(t, 1, f.configCalls)
}

func TestRoute_RegisterURL_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.router.opts.Config = func() (*config.HostConfig, error) {
		return nil, apperrors.InvalidConfig("values", errors.New("port: bad"))
	}

	err := f.router.Route(context.Background(), startup.ModeRegisterURL)
	assert.Equal(t, apperrors.KindInvalidConfig, apperrors.KindOf(err))
	assert.Empty(t, f.runner.Commands())
}

func TestRoute_RegisterURL_CommandFails(t *testing.T) {
	f := newFixture(t)
	f.runner.Respond = func(process.Command) (*process.Result, error) {
		return &process.Result{Stderr: []byte("The requested operation requires elevation."), ExitCode: 1}, errors.New("exit 1")
	}

	err := f.router.Route(context.Background(), startup.ModeRegisterURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires elevation")
}

func TestRoute_RegisterURL_Unsupported(t *testing.T) {
	f := newFixture(t)
	f.platform.Registration = false
	err := f.router.Route(context.Background(), startup.ModeRegisterURL)
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestRoute_InstallService(t *testing.T) {
	f := newFixture(t, "--data", "/srv/apphost")
	require.NoError(t, f.router.Route(context.Background(), startup.ModeInstallService))
	assert.Equal(t, []string{"install:AppHost", "start:AppHost"}, f.platform.Calls())
}

func TestRoute_InstallService_InstallFails(t *testing.T) {
	f := newFixture(t)
	f.platform.ManagerErr = errors.New("access is denied")

	err := f.router.Route(context.Background(), startup.ModeInstallService)
	require.Error(t, err)
	assert.Equal(t, []string{"install:AppHost"}, f.platform.Calls())
}

func TestRoute_UninstallService(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Route(context.Background(), startup.ModeUninstallService))
	assert.Equal(t, []string{"stop:AppHost", "uninstall:AppHost"}, f.platform.Calls())
}

func TestRoute_UnknownMode(t *testing.T) {
	f := newFixture(t)
	for _, mode := range []startup.Mode{startup.ModeUtility, startup.ModeInteractive, startup.ModeService} {
		err := f.router.Route(context.Background(), mode)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "no route"), err.Error())
	}
}
