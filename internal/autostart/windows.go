package autostart

import (
	"fmt"
	"os/exec"
	"strings"
)

type WindowsAutoStarter struct {
	mode Mode
}

func (w *WindowsAutoStarter) taskName() string {
	return "Turnsync-" + string(w.mode)
}

// taskArgs registers the task at logon under the interactive user, so the
// user's home, config file and savedgames folder resolve as they do in a
// terminal.
func (w *WindowsAutoStarter) taskArgs(execPath string, args []string) []string {
	command := fmt.Sprintf(`"%s" %s`, execPath, w.mode)
	for _, a := range args {
		if strings.ContainsRune(a, ' ') {
			a = `"` + a + `"`
		}
		command += " " + a
	}

	return []string{"/create",
		"/TN", w.taskName(),
		"/TR", command,
		"/SC", "ONLOGON",
		"/RL", "HIGHEST",
		"/F"}
}

func (w *WindowsAutoStarter) Install(execPath string, args ...string) error {
	cmd := exec.Command("schtasks", w.taskArgs(execPath, args)...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	cmd := exec.Command("schtasks", "/DELETE", "/TN", w.taskName(), "/F")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	cmd := exec.Command("schtasks", "/Query", "/TN", w.taskName())
	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}
