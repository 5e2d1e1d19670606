package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"turnsync/internal/engine"
	"turnsync/internal/model"
	"turnsync/internal/notify"
	"turnsync/internal/schedule"
)

// tuesday22 is Tuesday 2026-10-13 22:00 UTC.
var tuesday22 = time.Date(2026, 10, 13, 22, 0, 0, 0, time.UTC)

func mustParse(t *testing.T, name, text string) schedule.GameSchedule {
	t.Helper()
	s, err := schedule.Parse(name, text)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

type fixture struct {
	local    string
	shared   string
	launcher *mockLauncher
	runs     *mockRuns
	history  *mockHistory
	notes    *notify.Recorder
	now      time.Time
	orch     *Orchestrator
}

func newFixture(t *testing.T, games ...schedule.GameSchedule) *fixture {
	t.Helper()
	f := &fixture{
		local:   t.TempDir(),
		shared:  t.TempDir(),
		runs:    &mockRuns{},
		history: &mockHistory{},
		notes:   notify.NewRecorder(100, nil),
		now:     tuesday22,
	}
	f.launcher = newMockLauncher(f.local)

	orch, err := New(Options{
		Games:      games,
		LocalRoot:  f.local,
		SharedRoot: f.shared,
		Launcher:   f.launcher,
		Notifier:   f.notes,
		Runs:       f.runs,
		History:    f.history,
		Now:        func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatal(err)
	}
	f.orch = orch
	return f
}

func TestTick_CollectRunDistribute(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"), mustParse(t, "GameB", "23"))
	writeFile(t, filepath.Join(f.shared, "GameA", "ulm.2h"), "ulm orders")
	writeFile(t, filepath.Join(f.shared, "GameA", "arco.2h"), "arco orders")
	writeFile(t, filepath.Join(f.shared, "GameB", "ermor.2h"), "ermor orders")

	if !f.orch.Tick(context.Background()) {
		t.Fatal("tick skipped")
	}

	if len(f.launcher.calls) != 1 || f.launcher.calls[0] != "GameA" {
		t.Fatalf("engine calls = %v, want [GameA]", f.launcher.calls)
	}
	if len(f.launcher.seen["GameA"]) != 2 {
		t.Errorf("engine saw orders %v, want both collected before the run", f.launcher.seen["GameA"])
	}

	for _, nation := range []string{"ulm", "arco"} {
		got, err := os.ReadFile(filepath.Join(f.shared, "GameA", nation+".trn"))
		if err != nil || string(got) != "turn for "+nation {
			t.Errorf("%s.trn in shared = %q, %v", nation, got, err)
		}
	}

	if _, err := os.Stat(filepath.Join(f.local, "GameB")); !os.IsNotExist(err) {
		t.Error("GameB is not due and should not be collected")
	}

	if len(f.runs.runs) != 1 {
		t.Fatalf("runs = %+v", f.runs.runs)
	}
	run := f.runs.runs[0]
	if run.Status != model.RunSucceeded || run.Collected != 2 || run.Distributed != 2 || run.Slot != "2026-10-13@20" {
		t.Errorf("run = %+v", run)
	}
	if run.ID == "" {
		t.Error("run has no id")
	}
}

func TestTick_OncePerSlot(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))

	f.orch.Tick(context.Background())
	f.now = tuesday22.Add(30 * time.Minute)
	f.orch.Tick(context.Background())

	if f.launcher.callCount() != 1 {
		t.Fatalf("engine calls = %d, want 1 within one slot", f.launcher.callCount())
	}

	// Wednesday 20:30 is a new slot.
	f.now = tuesday22.Add(22*time.Hour + 30*time.Minute)
	f.orch.Tick(context.Background())
	if f.launcher.callCount() != 2 {
		t.Fatalf("engine calls = %d, want 2 after the next slot", f.launcher.callCount())
	}

	games := f.orch.Games()
	if len(games) != 1 || games[0].LastSlot != "2026-10-14@20" || games[0].LastHosted == nil {
		t.Errorf("games = %+v", games)
	}
}

func TestTick_BeforeScheduledHour(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "23"))
	f.orch.Tick(context.Background())

	if f.launcher.callCount() != 0 {
		t.Errorf("engine ran before its hour")
	}
	if len(f.runs.runs) != 0 {
		t.Errorf("runs recorded: %+v", f.runs.runs)
	}
}

func TestTick_SkipsWhileRunning(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))
	f.launcher.block = make(chan struct{})
	f.launcher.entered = make(chan struct{}, 1)

	done := make(chan bool)
	go func() { done <- f.orch.Tick(context.Background()) }()
	<-f.launcher.entered

	if !f.orch.Busy() {
		t.Error("expected busy during run")
	}
	if f.orch.Tick(context.Background()) {
		t.Error("overlapping tick was not skipped")
	}
	if _, err := f.orch.RunNow(context.Background(), "GameA"); !errors.Is(err, ErrBusy) {
		t.Errorf("RunNow during tick error = %v, want ErrBusy", err)
	}

	close(f.launcher.block)
	if !<-done {
		t.Error("first tick reported skipped")
	}
	if f.orch.Busy() {
		t.Error("guard not released")
	}
}

func TestTick_FailureDoesNotStopOtherGames(t *testing.T) {
	f := newFixture(t, mustParse(t, "Broken", "20"), mustParse(t, "GameA", "20"))
	// A file where the game directory should be makes collecting fail.
	writeFile(t, filepath.Join(f.shared, "Broken"), "not a directory")
	writeFile(t, filepath.Join(f.shared, "GameA", "ulm.2h"), "orders")

	f.orch.Tick(context.Background())

	if len(f.launcher.calls) != 1 || f.launcher.calls[0] != "GameA" {
		t.Errorf("engine calls = %v, want [GameA]", f.launcher.calls)
	}
	if len(f.runs.runs) != 2 || f.runs.runs[0].Status != model.RunFailed || f.runs.runs[1].Status != model.RunSucceeded {
		t.Errorf("runs = %+v", f.runs.runs)
	}
	if f.notes.Count(notify.Error) != 1 {
		t.Errorf("error notifications = %d, want 1", f.notes.Count(notify.Error))
	}
}

func TestTick_NonZeroExitSuppressesDistribute(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))
	writeFile(t, filepath.Join(f.shared, "GameA", "ulm.2h"), "orders")
	f.launcher.exitCode = 2

	f.orch.Tick(context.Background())

	if _, err := os.Stat(filepath.Join(f.shared, "GameA", "ulm.trn")); !os.IsNotExist(err) {
		t.Error("turn distributed after a failed engine run")
	}
	run := f.runs.runs[0]
	if run.Status != model.RunFailed || run.ExitCode != 2 || run.Distributed != 0 {
		t.Errorf("run = %+v", run)
	}
}

func TestTick_NonZeroExitDistributeOnFailure(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))
	f.orch.opts.DistributeOnFailure = true
	writeFile(t, filepath.Join(f.shared, "GameA", "ulm.2h"), "orders")
	f.launcher.exitCode = 2

	f.orch.Tick(context.Background())

	if _, err := os.Stat(filepath.Join(f.shared, "GameA", "ulm.trn")); err != nil {
		t.Errorf("turn not distributed: %v", err)
	}
	if run := f.runs.runs[0]; run.Status != model.RunFailed || run.Distributed != 1 {
		t.Errorf("run = %+v", run)
	}
}

func TestTick_LaunchError(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))
	f.launcher.err = &engine.LaunchError{Path: "/nowhere/Dominions4.exe", Err: os.ErrNotExist}

	f.orch.Tick(context.Background())

	run := f.runs.runs[0]
	if run.Status != model.RunFailed || run.ErrMsg == "" {
		t.Errorf("run = %+v", run)
	}

	// The slot is consumed; the next chance is the next scheduled hour.
	f.launcher.err = nil
	f.now = tuesday22.Add(time.Hour)
	f.orch.Tick(context.Background())
	if len(f.runs.runs) != 1 {
		t.Errorf("failed slot was retried: %+v", f.runs.runs)
	}
}

func TestRunNow(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "23"))
	writeFile(t, filepath.Join(f.shared, "GameA", "ulm.2h"), "orders")

	run, err := f.orch.RunNow(context.Background(), "GameA")
	if err != nil {
		t.Fatal(err)
	}
	if run.Slot != "manual" || run.Status != model.RunSucceeded {
		t.Errorf("run = %+v", run)
	}

	if _, err := f.orch.RunNow(context.Background(), "Nope"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("unknown game error = %v", err)
	}

	// A manual run does not consume the scheduled slot.
	f.now = time.Date(2026, 10, 13, 23, 0, 0, 0, time.UTC)
	f.orch.Tick(context.Background())
	if f.launcher.callCount() != 2 {
		t.Errorf("engine calls = %d, want 2", f.launcher.callCount())
	}
}

func TestCopyHistoryRecorded(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))
	writeFile(t, filepath.Join(f.shared, "GameA", "ulm.2h"), "orders")
	f.orch.Tick(context.Background())

	want := []string{DirectionCollect, DirectionDistribute}
	if len(f.history.directions) != len(want) {
		t.Fatalf("history = %v", f.history.directions)
	}
	for i := range want {
		if f.history.directions[i] != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, f.history.directions[i], want[i])
		}
	}
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, mustParse(t, "GameA", "20"))

	f.orch.Stop()
	if err := f.orch.Start(); err != nil {
		t.Fatal(err)
	}
	if err := f.orch.Start(); err != nil {
		t.Fatal(err)
	}
	f.orch.Stop()
	f.orch.Stop()
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{LocalRoot: "/a", SharedRoot: "/b"}); err == nil {
		t.Error("expected error without a launcher")
	}
	if _, err := New(Options{Launcher: newMockLauncher("/a")}); err == nil {
		t.Error("expected error without roots")
	}
}
