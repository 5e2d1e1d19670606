package autostart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"watch", "host"} {
		if m, err := ParseMode(s); err != nil || string(m) != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseMode("serve"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestWriteUnit(t *testing.T) {
	var buf bytes.Buffer
	if err := writeUnit(&buf, "/usr/local/bin/turnsync", ModeHost, []string{"--config", "/etc/turnsync.yaml"}); err != nil {
		t.Fatal(err)
	}

	unit := buf.String()
	if !strings.Contains(unit, "ExecStart=/usr/local/bin/turnsync host --config /etc/turnsync.yaml\n") {
		t.Errorf("unexpected ExecStart in unit:\n%s", unit)
	}
	if !strings.Contains(unit, "[Service]") {
		t.Errorf("missing [Service] section:\n%s", unit)
	}
}

func TestLinuxInstallUninstall(t *testing.T) {
	var calls [][]string
	l := &LinuxAutoStarter{
		mode:    ModeWatch,
		unitDir: t.TempDir(),
		run: func(args ...string) ([]byte, error) {
			calls = append(calls, args)
			return nil, nil
		},
	}

	if err := l.Install("/bin/turnsync"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := l.IsInstalled(); !ok {
		t.Error("expected installed")
	}
	if _, err := os.Stat(filepath.Join(l.unitDir, "turnsync-watch.service")); err != nil {
		t.Errorf("unit file missing: %v", err)
	}
	if len(calls) != 3 || calls[1][2] != "turnsync-watch.service" {
		t.Errorf("systemctl calls = %v", calls)
	}

	if err := l.Uninstall(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := l.IsInstalled(); ok {
		t.Error("expected uninstalled")
	}
	if err := l.Uninstall(); err != nil {
		t.Errorf("second uninstall: %v", err)
	}
}

func TestWindowsTaskArgs(t *testing.T) {
	w := &WindowsAutoStarter{mode: ModeWatch}
	args := w.taskArgs(`C:\bin\turnsync.exe`, []string{"--config", `C:\Users\Ann Lee\.turnsync\config.yaml`})

	joined := strings.Join(args, "|")
	if !strings.Contains(joined, "|/SC|ONLOGON|") {
		t.Errorf("task should start at logon: %v", args)
	}
	if strings.Contains(joined, "/RU") {
		t.Errorf("task should run as the installing user: %v", args)
	}

	want := `"C:\bin\turnsync.exe" watch --config "C:\Users\Ann Lee\.turnsync\config.yaml"`
	if args[4] != want {
		t.Errorf("/TR = %q, want %q", args[4], want)
	}
}
