package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"turnsync/internal/pathmap"
)

// Env describes the account whose folders are used when none are
// configured.
type Env struct {
	Username string
	HomeDir  string
	GOOS     string
}

func CurrentEnv() (Env, error) {
	u, err := user.Current()
	if err != nil {
		return Env{}, fmt.Errorf("failed to look up current user: %w", err)
	}

	// Windows reports DOMAIN\name.
	name := filepath.Base(u.Username)
	return Env{Username: name, HomeDir: u.HomeDir, GOOS: runtime.GOOS}, nil
}

func (e Env) home() string {
	if e.GOOS == "windows" {
		return filepath.Join(`C:\Users`, e.Username)
	}
	if e.HomeDir != "" {
		return e.HomeDir
	}
	return filepath.Join("/home", e.Username)
}

func (e Env) DefaultLocalFolder() string {
	if e.GOOS == "windows" {
		return filepath.Join(e.home(), "AppData", "Roaming", "Dominions4", "savedgames")
	}
	return filepath.Join(e.home(), ".dominions4", "savedgames")
}

func (e Env) DefaultHostFolder() string {
	return filepath.Join(e.home(), "Dropbox", "Dom4Games")
}

func (e Env) DefaultEnginePath() string {
	if e.GOOS == "windows" {
		return `C:\Program Files (x86)\Steam\steamapps\common\Dominions4\Dominions4.exe`
	}
	return filepath.Join(e.home(), ".steam", "steam", "steamapps", "common", "Dominions4", "dom4.sh")
}

// ResolveFolders fills in default folders for env and validates them: the
// local folder must exist, the host folder is created when missing, and
// with requireEngine the engine executable must exist.
func (c *Config) ResolveFolders(env Env, requireEngine bool) error {
	if c.LocalFolder == "" {
		c.LocalFolder = env.DefaultLocalFolder()
	}
	if info, err := os.Stat(c.LocalFolder); err != nil || !info.IsDir() {
		return &Error{Key: "local_folder", Msg: fmt.Sprintf("local savedgames folder could not be found in %s", c.LocalFolder)}
	}

	if c.HostFolder == "" {
		c.HostFolder = env.DefaultHostFolder()
	}
	if err := pathmap.EnsureDir(c.HostFolder); err != nil {
		return &Error{Key: "host_folder", Msg: fmt.Sprintf("host folder %s could not be created: %v", c.HostFolder, err)}
	}

	c.LocalFolder = pathmap.Normalize(c.LocalFolder)
	c.HostFolder = pathmap.Normalize(c.HostFolder)

	if !requireEngine {
		return nil
	}

	if c.Engine.Path == "" {
		c.Engine.Path = env.DefaultEnginePath()
	}
	if info, err := os.Stat(c.Engine.Path); err != nil || info.IsDir() {
		return &Error{Key: "engine.path", Msg: fmt.Sprintf("game engine executable could not be found at %s", c.Engine.Path)}
	}

	return nil
}
