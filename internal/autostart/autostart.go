// Package autostart registers turnsync with the OS so the watch or host
// mode starts on boot or logon.
package autostart

import (
	"fmt"
	"runtime"
)

type Mode string

const (
	ModeWatch Mode = "watch"
	ModeHost  Mode = "host"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWatch, ModeHost:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q, expected %q or %q", s, ModeWatch, ModeHost)
	}
}

type AutoStarter interface {
	Install(execPath string, args ...string) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New(mode Mode) AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{mode: mode}
	case "linux":
		return &LinuxAutoStarter{mode: mode}
	default:
		return &UnsupportedAutoStarter{}
	}
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ string, _ ...string) error {
	return fmt.Errorf("autostart is not supported on %s", runtime.GOOS)
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
