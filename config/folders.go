package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/apphost/startup"
	"github.com/kbukum/apphost/version"
)

// File names inside the app data folder.
const (
	ConfigFileName = "config.yml"
	EnvFileName    = ".env"
	MainDBFileName = "apphost.db"
	LogDBFileName  = "logs.db"
	PIDFileName    = "apphost.pid"
	dataProtection = "asp"
)

// Folders locates files under the app data folder.
type Folders struct {
	appData string
}

// NewFolders roots the folders at dir.
func NewFolders(dir string) Folders {
	return Folders{appData: filepath.Clean(dir)}
}

// ResolveFolders picks the app data folder: the --data argument when given,
// otherwise the shared program data folder for services and the user config
// folder for everything else.
func ResolveFolders(c *startup.Context, mode startup.Mode) (Folders, error) {
	if dir := c.DataDir(); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return Folders{}, fmt.Errorf("resolve data folder %s: %w", dir, err)
		}
		return NewFolders(abs), nil
	}

	if mode == startup.ModeService {
		if pd := os.Getenv("ProgramData"); pd != "" {
			return NewFolders(filepath.Join(pd, version.AppName)), nil
		}
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return Folders{}, fmt.Errorf("resolve user config folder: %w", err)
	}
	return NewFolders(filepath.Join(base, version.AppName)), nil
}

// Ensure creates the app data folder.
func (f Folders) Ensure() error {
	return os.MkdirAll(f.appData, 0o755)
}

func (f Folders) AppDataPath() string        { return f.appData }
func (f Folders) ConfigPath() string         { return filepath.Join(f.appData, ConfigFileName) }
func (f Folders) EnvPath() string            { return filepath.Join(f.appData, EnvFileName) }
func (f Folders) DataProtectionPath() string { return filepath.Join(f.appData, dataProtection) }
func (f Folders) MainDBPath() string         { return filepath.Join(f.appData, MainDBFileName) }
func (f Folders) LogDBPath() string          { return filepath.Join(f.appData, LogDBFileName) }
func (f Folders) PIDFilePath() string        { return filepath.Join(f.appData, PIDFileName) }
