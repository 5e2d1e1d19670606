// Package host runs the game engine for every game whose scheduled hour has
// come, moving order files in before the run and turn files out after it.
package host

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
	"turnsync/internal/engine"
	"turnsync/internal/model"
	"turnsync/internal/notify"
	"turnsync/internal/pathmap"
	"turnsync/internal/schedule"
	"turnsync/internal/turn"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 30 * time.Minute

	DirectionCollect    = "collect"
	DirectionDistribute = "distribute"
)

var (
	ErrBusy        = errors.New("a hosting run is already in progress")
	ErrUnknownGame = errors.New("unknown game")
)

type RunRecorder interface {
	Save(run *model.HostRun) error
}

type CopyRecorder interface {
	Save(direction string, result model.SyncResult) error
}

type Options struct {
	Games      []schedule.GameSchedule
	LocalRoot  string
	SharedRoot string
	Launcher   engine.Launcher
	Notifier   notify.Notifier
	Runs       RunRecorder
	History    CopyRecorder
	Interval   time.Duration
	Now        func() time.Time
	Log        *zap.Logger

	// DistributeOnFailure copies turn files out even when the engine
	// exits non-zero.
	DistributeOnFailure bool
}

type Orchestrator struct {
	opts Options

	// sem admits one tick or manual run at a time.
	sem chan struct{}

	mu         sync.Mutex
	hosted     map[string]string
	lastHosted map[string]time.Time

	cronMu sync.Mutex
	cron   *cron.Cron
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Launcher == nil {
		return nil, errors.New("orchestrator needs an engine launcher")
	}
	if opts.LocalRoot == "" || opts.SharedRoot == "" {
		return nil, errors.New("orchestrator needs local and shared roots")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewZap(opts.Log)
	}

	games := make([]schedule.GameSchedule, len(opts.Games))
	copy(games, opts.Games)
	opts.Games = games

	return &Orchestrator{
		opts:       opts,
		sem:        make(chan struct{}, 1),
		hosted:     make(map[string]string),
		lastHosted: make(map[string]time.Time),
	}, nil
}

// Start begins ticking every Interval. Calling Start twice is a no-op.
func (o *Orchestrator) Start() error {
	o.cronMu.Lock()
	defer o.cronMu.Unlock()

	if o.cron != nil {
		return nil
	}

	cronLog := cron.PrintfLogger(zap.NewStdLog(o.opts.Log))
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	every := "@every " + o.opts.Interval.String()
	if _, err := c.AddFunc(every, func() { o.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule host tick: %w", err)
	}

	c.Start()
	o.cron = c

	o.opts.Notifier.Notify(fmt.Sprintf("host scheduler started for %d games, checking every %s",
		len(o.opts.Games), o.opts.Interval), notify.Info)
	return nil
}

// Stop halts the ticker and waits for a running tick to finish. Calling
// Stop on a stopped orchestrator is a no-op.
func (o *Orchestrator) Stop() {
	o.cronMu.Lock()
	defer o.cronMu.Unlock()

	if o.cron == nil {
		return
	}

	<-o.cron.Stop().Done()
	o.cron = nil

	o.opts.Notifier.Notify("host scheduler stopped", notify.Info)
}

// Tick hosts every due game whose current slot has not been hosted yet.
// It returns false without doing anything if another run holds the guard.
func (o *Orchestrator) Tick(ctx context.Context) bool {
	select {
	case o.sem <- struct{}{}:
	default:
		o.opts.Log.Warn("previous host run still in progress, skipping tick")
		return false
	}
	defer func() { <-o.sem }()

	now := o.opts.Now().UTC()

	for _, game := range o.opts.Games {
		if !schedule.NeedsHost(game, now) {
			continue
		}

		slot := schedule.Slot(game, now)
		if o.slotHosted(game.Name, slot) {
			o.opts.Log.Debug("slot already hosted",
				zap.String("game", game.Name),
				zap.String("slot", slot))
			continue
		}

		// A failed run still consumes the slot; the next chance is the
		// next scheduled hour.
		o.markHosted(game.Name, slot, now)
		o.host(ctx, game.Name, slot, now)
	}

	return true
}

// RunNow hosts one game immediately, outside its schedule.
func (o *Orchestrator) RunNow(ctx context.Context, name string) (*model.HostRun, error) {
	if !o.hasGame(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, name)
	}

	select {
	case o.sem <- struct{}{}:
	default:
		return nil, ErrBusy
	}
	defer func() { <-o.sem }()

	now := o.opts.Now().UTC()
	return o.host(ctx, name, "manual", now), nil
}

func (o *Orchestrator) host(ctx context.Context, game, slot string, now time.Time) *model.HostRun {
	run := &model.HostRun{
		ID:          uuid.NewString(),
		Game:        game,
		Slot:        slot,
		TriggeredAt: now,
		Status:      model.RunSucceeded,
	}

	o.opts.Notifier.Notify(fmt.Sprintf("hosting %s (slot %s)", game, slot), notify.Info)

	err := o.pipeline(ctx, run)
	run.FinishedAt = o.opts.Now().UTC()

	if err != nil {
		run.Status = model.RunFailed
		run.ErrMsg = err.Error()
		o.opts.Notifier.Notify(fmt.Sprintf("hosting %s failed: %v", game, err), notify.Error)
	} else {
		o.opts.Notifier.Notify(fmt.Sprintf("hosted %s: %d orders collected, %d turns distributed",
			game, run.Collected, run.Distributed), notify.Info)
	}

	if o.opts.Runs != nil {
		if err := o.opts.Runs.Save(run); err != nil {
			o.opts.Log.Warn("failed to save host run",
				zap.String("game", game),
				zap.Error(err))
		}
	}

	return run
}

func (o *Orchestrator) pipeline(ctx context.Context, run *model.HostRun) error {
	var err error

	run.Collected, err = o.copyGameFiles(run.Game, o.opts.SharedRoot, o.opts.LocalRoot, turn.OrderExt, DirectionCollect)
	if err != nil {
		return fmt.Errorf("failed to collect orders: %w", err)
	}

	run.ExitCode, err = o.opts.Launcher.Run(ctx, run.Game)
	if err != nil {
		return err
	}

	if run.ExitCode != 0 && !o.opts.DistributeOnFailure {
		return fmt.Errorf("engine exited with code %d, turn files not distributed", run.ExitCode)
	}

	run.Distributed, err = o.copyGameFiles(run.Game, o.opts.LocalRoot, o.opts.SharedRoot, turn.TurnExt, DirectionDistribute)
	if err != nil {
		return fmt.Errorf("failed to distribute turns: %w", err)
	}

	if run.ExitCode != 0 {
		return fmt.Errorf("engine exited with code %d", run.ExitCode)
	}

	return nil
}

// copyGameFiles copies every file with ext directly inside srcRoot/<game>
// to the same place under dstRoot. A missing game directory has nothing to
// copy. Failed files do not stop the others.
func (o *Orchestrator) copyGameFiles(game, srcRoot, dstRoot, ext, direction string) (int, error) {
	dir := filepath.Join(srcRoot, game)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		o.opts.Log.Debug("no game directory",
			zap.String("direction", direction),
			zap.String("dir", dir))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var copied int
	var errs error

	for _, e := range entries {
		if e.IsDir() || !turn.HasExt(e.Name(), ext) {
			continue
		}

		src := filepath.Join(dir, e.Name())
		result := model.SyncResult{
			Event:   model.FileEvent{Kind: model.EventCreated, Path: src, Timestamp: time.Now()},
			SrcPath: src,
		}
		result.DstPath, result.Checksum, result.Err = pathmap.CopyTo(model.CopyTask{
			Source:     src,
			SourceRoot: srcRoot,
			TargetRoot: dstRoot,
		})

		if result.Err != nil {
			errs = multierr.Append(errs, result.Err)
		} else {
			copied++
			o.opts.Log.Info("copied",
				zap.String("direction", direction),
				zap.String("src", result.SrcPath),
				zap.String("dst", result.DstPath))
		}

		if o.opts.History != nil {
			if err := o.opts.History.Save(direction, result); err != nil {
				o.opts.Log.Warn("failed to save history",
					zap.Error(err))
			}
		}
	}

	return copied, errs
}

func (o *Orchestrator) slotHosted(game, slot string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hosted[game] == slot
}

func (o *Orchestrator) markHosted(game, slot string, at time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hosted[game] = slot
	o.lastHosted[game] = at
}

func (o *Orchestrator) hasGame(name string) bool {
	for _, g := range o.opts.Games {
		if g.Name == name {
			return true
		}
	}
	return false
}

// Busy reports whether a tick or manual run is in progress.
func (o *Orchestrator) Busy() bool {
	return len(o.sem) > 0
}

func (o *Orchestrator) Games() []model.GameSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snaps := make([]model.GameSnapshot, 0, len(o.opts.Games))
	for _, g := range o.opts.Games {
		snap := model.GameSnapshot{
			Name:     g.Name,
			Schedule: g.String(),
			LastSlot: o.hosted[g.Name],
		}
		if at, ok := o.lastHosted[g.Name]; ok {
			snap.LastHosted = &at
		}
		snaps = append(snaps, snap)
	}

	return snaps
}
