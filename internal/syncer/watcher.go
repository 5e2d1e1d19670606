package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"turnsync/internal/model"
	"turnsync/internal/notify"
	"turnsync/internal/pathmap"
	"turnsync/internal/watcher"

	"go.uber.org/zap"
)

type Watcher struct {
	opts  Options
	kinds map[model.EventKind]bool

	mu       sync.Mutex
	src      watcher.Source
	loopDone chan struct{}
	handlers sync.WaitGroup

	statsMu   sync.RWMutex
	watching  bool
	startedAt time.Time
	synced    int
	skipped   int
	failed    int
	lastSync  *time.Time
}

func New(opts Options) (*Watcher, error) {
	if opts.Endpoint.Root == "" || opts.TargetRoot == "" {
		return nil, errors.New("watcher needs both a root and a target root")
	}
	if opts.NewSource == nil {
		return nil, errors.New("watcher needs an event source")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewZap(opts.Log)
	}

	kinds := make(map[model.EventKind]bool, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kinds[k] = true
	}

	return &Watcher{opts: opts, kinds: kinds}, nil
}

// Start attaches the event source and begins dispatching events. Calling
// Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.src != nil {
		return nil
	}

	if err := pathmap.EnsureDir(w.opts.Endpoint.Root); err != nil {
		return fmt.Errorf("failed to create watch root %s: %w", w.opts.Endpoint.Root, err)
	}

	src, err := w.opts.NewSource(w.opts.Endpoint.Root, w.opts.Endpoint.Recursive)
	if err != nil {
		return fmt.Errorf("failed to create %s source: %w", w.opts.Name, err)
	}

	if err := src.Start(); err != nil {
		return fmt.Errorf("failed to start %s source: %w", w.opts.Name, err)
	}

	events := watcher.Filter(src.Events(), w.opts.Endpoint.Ext, w.opts.IgnoreList)
	if w.opts.Debounce > 0 {
		events = watcher.Debounce(events, w.opts.Debounce)
	}

	w.src = src
	w.loopDone = make(chan struct{})
	go w.dispatch(events, w.loopDone)

	w.statsMu.Lock()
	w.watching = true
	w.startedAt = time.Now()
	w.statsMu.Unlock()

	w.opts.Notifier.Notify(fmt.Sprintf("%s watcher started on %s", w.opts.Name, w.opts.Endpoint.Root), notify.Info)
	return nil
}

// Stop detaches the event source and waits for in-flight copies. Calling
// Stop on a stopped watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.src == nil {
		return
	}

	w.src.Stop()
	<-w.loopDone
	w.handlers.Wait()
	w.src = nil

	w.statsMu.Lock()
	w.watching = false
	w.statsMu.Unlock()

	w.opts.Notifier.Notify(fmt.Sprintf("%s watcher stopped", w.opts.Name), notify.Info)
}

func (w *Watcher) dispatch(events <-chan model.FileEvent, done chan struct{}) {
	defer close(done)

	for event := range events {
		if !w.kinds[event.Kind] {
			continue
		}

		w.handlers.Add(1)
		go func(event model.FileEvent) {
			defer w.handlers.Done()
			w.handle(event)
		}(event)
	}
}

func (w *Watcher) handle(event model.FileEvent) model.SyncResult {
	result := model.SyncResult{
		Event:   event,
		SrcPath: event.Path,
	}

	if w.opts.Gate != nil && !w.opts.Gate(event.Path) {
		result.Skipped = true
		w.opts.Log.Debug("not ours, skipping",
			zap.String("direction", w.opts.Name),
			zap.String("path", event.Path))
		w.record(result)
		return result
	}

	result.DstPath, result.Checksum, result.Err = pathmap.CopyTo(model.CopyTask{
		Source:     event.Path,
		SourceRoot: w.opts.Endpoint.Root,
		TargetRoot: w.opts.TargetRoot,
	})

	if result.Err != nil {
		w.opts.Notifier.Notify(fmt.Sprintf("%s: %v", w.opts.Name, result.Err), notify.Error)
	} else {
		w.opts.Notifier.Notify(fmt.Sprintf("%s: %s copied to %s", w.opts.Name, result.SrcPath, result.DstPath), notify.Info)
	}

	w.record(result)
	return result
}

func (w *Watcher) record(result model.SyncResult) {
	w.statsMu.Lock()
	switch {
	case result.Skipped:
		w.skipped++
	case result.Err != nil:
		w.failed++
	default:
		w.synced++
		now := time.Now()
		w.lastSync = &now
	}
	w.statsMu.Unlock()

	if result.Skipped || w.opts.History == nil {
		return
	}

	if err := w.opts.History.Save(w.opts.Name, result); err != nil {
		w.opts.Log.Warn("failed to save history",
			zap.Error(err))
	}
}

// FullSync applies the watcher's rules to every matching file already under
// the root, as if each had just been created.
func (w *Watcher) FullSync(ctx context.Context) ([]model.SyncResult, error) {
	var results []model.SyncResult
	root := w.opts.Endpoint.Root

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && !w.opts.Endpoint.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if !watcher.Matches(path, w.opts.Endpoint.Ext, w.opts.IgnoreList) {
			return nil
		}

		event := model.FileEvent{Kind: model.EventCreated, Path: path, Timestamp: time.Now()}
		results = append(results, w.handle(event))
		return nil
	})

	return results, err
}

func (w *Watcher) Name() string {
	return w.opts.Name
}

func (w *Watcher) Watching() bool {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.watching
}

func (w *Watcher) Snapshot() model.WatcherSnapshot {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return model.WatcherSnapshot{
		Name:      w.opts.Name,
		Root:      w.opts.Endpoint.Root,
		Target:    w.opts.TargetRoot,
		Ext:       w.opts.Endpoint.Ext,
		Watching:  w.watching,
		StartedAt: w.startedAt,
		Synced:    w.synced,
		Skipped:   w.skipped,
		Failed:    w.failed,
		LastSync:  w.lastSync,
	}
}
