package bootstrap

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/apphost/errors"
)

// acquireInstance records this process in the PID file at path. A PID file
// naming another live process means a second instance was started; that
// is a terminate request, not a failure. The returned release removes the
// file if it still names this process.
func acquireInstance(path string) (release func(), err error) {
	return lockInstance(path, os.Getpid(), processAlive)
}

// lockInstance publishes a fully written temp file under path with a hard
// link, which fails when path exists. Readers never see a partial PID. A
// stale file is removed and the link retried once; losing that retry means
// another instance got there first.
func lockInstance(path string, self int, alive func(int) bool) (func(), error) {
	tmp, err := writeTemp(path, self)
	if err != nil {
		return nil, apperrors.AccessDenied(path, err)
	}
	defer os.Remove(tmp)

	release := func() {
		if pid, ok := readPID(path); ok && pid == self {
			_ = os.Remove(path)
		}
	}

	for attempt := 0; ; attempt++ {
		err := os.Link(tmp, path)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, apperrors.AccessDenied(path, err)
		}

		pid, ok := readPID(path)
		switch {
		case ok && pid == self:
			return release, nil
		case ok && alive(pid):
			return nil, apperrors.TerminateRequested("Another instance is already running").WithDetail("pid", pid)
		case attempt > 0:
			return nil, apperrors.TerminateRequested("Another instance is already running")
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.AccessDenied(path, err)
		}
	}
}

func writeTemp(path string, pid int) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	_, werr := f.WriteString(strconv.Itoa(pid))
	merr := f.Chmod(0o644)
	cerr := f.Close()
	if err := errors.Join(werr, merr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid, err == nil && pid > 0
}
