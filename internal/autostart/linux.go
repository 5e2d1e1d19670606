package autostart

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
)

const serviceTemplate = `[Unit]
Description=turnsync {{.Mode}}
After=network.target

[Service]
ExecStart={{.ExecPath}} {{.Mode}}{{.Args}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

type LinuxAutoStarter struct {
	mode Mode
	// unitDir overrides ~/.config/systemd/user.
	unitDir string
	// run executes systemctl; replaced in tests.
	run func(args ...string) ([]byte, error)
}

func (l *LinuxAutoStarter) unitName() string {
	return fmt.Sprintf("turnsync-%s.service", l.mode)
}

func (l *LinuxAutoStarter) servicePath() (string, error) {
	dir := l.unitDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, l.unitName()), nil
}

func (l *LinuxAutoStarter) systemctl(args ...string) ([]byte, error) {
	if l.run != nil {
		return l.run(args...)
	}
	return exec.Command("systemctl", args...).CombinedOutput()
}

func writeUnit(w io.Writer, execPath string, mode Mode, args []string) error {
	var extra string
	for _, a := range args {
		if strings.ContainsRune(a, ' ') {
			a = `"` + a + `"`
		}
		extra += " " + a
	}

	tmpl := template.Must(template.New("service").Parse(serviceTemplate))
	return tmpl.Execute(w, map[string]string{
		"ExecPath": execPath,
		"Mode":     string(mode),
		"Args":     extra,
	})
}

func (l *LinuxAutoStarter) Install(execPath string, args ...string) error {
	path, err := l.servicePath()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create service file: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := writeUnit(f, execPath, l.mode, args); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	cmds := [][]string{
		{"--user", "daemon-reload"},
		{"--user", "enable", l.unitName()},
		{"--user", "start", l.unitName()},
	}

	for _, args := range cmds {
		if out, err := l.systemctl(args...); err != nil {
			return fmt.Errorf("failed to run systemctl %v: %w\n%s", args, err, out)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	_, _ = l.systemctl("--user", "stop", l.unitName())
	_, _ = l.systemctl("--user", "disable", l.unitName())

	path, err := l.servicePath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.servicePath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
