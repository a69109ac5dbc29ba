package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// AppName is the product name used for folders, services and logs.
const AppName = "AppHost"

// ServiceName is the name registered with the platform service manager.
const ServiceName = "AppHost"

var (
	// Set at build time using -ldflags.
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the version reported by the version command and the banner.
type Info struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

// GetVersionInfo merges link-time values with the embedded VCS settings.
func GetVersionInfo() *Info {
	info := &Info{
		App:       AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// String renders "AppHost 1.4.0 (abc1234, built ...)".
func (i *Info) String() string {
	var meta []string
	if i.GitCommit != "" {
		c := i.GitCommit
		if i.IsDirty {
			c += "-dirty"
		}
		meta = append(meta, c)
	}
	if i.BuildTime != "" {
		meta = append(meta, "built "+i.BuildTime)
	}
	if i.GoVersion != "" {
		meta = append(meta, i.GoVersion)
	}
	if len(meta) == 0 {
		return fmt.Sprintf("%s %s", i.App, i.Version)
	}
	return fmt.Sprintf("%s %s (%s)", i.App, i.Version, strings.Join(meta, ", "))
}

// Banner is the first line logged on every run.
func Banner() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return fmt.Sprintf("Starting %s - %s - Version %s", AppName, filepath.Base(exe), Version)
}
