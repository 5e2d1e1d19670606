package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"turnsync/internal/model"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type FSNotify struct {
	root      string
	recursive bool
	log       *zap.Logger
	fw        *fsnotify.Watcher
	eventCh   chan model.FileEvent
	doneCh    chan struct{}
	stopOnce  sync.Once
}

func NewFSNotify(root string, recursive bool, bufferSize int, log *zap.Logger) (*FSNotify, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FSNotify{
		root:      absRoot,
		recursive: recursive,
		log:       log,
		fw:        fw,
		eventCh:   make(chan model.FileEvent, bufferSize),
		doneCh:    make(chan struct{}),
	}, nil
}

func (w *FSNotify) Start() error {
	if _, err := os.Stat(w.root); err != nil {
		_ = w.fw.Close()
		return fmt.Errorf("source directory not found: %w", err)
	}

	if err := w.add(w.root, false); err != nil {
		_ = w.fw.Close()
		return err
	}

	go w.run()

	w.log.Info("watcher started",
		zap.String("dir", w.root),
		zap.Bool("recursive", w.recursive))
	return nil
}

// add watches dir (and its subdirectories when recursive). With emit set,
// files already present are reported as created; they may have been
// written before the watch on a brand new directory was in place.
func (w *FSNotify) add(dir string, emit bool) error {
	if !w.recursive {
		return w.fw.Add(dir)
	}

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if err := w.fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.log.Debug("watching directory",
				zap.String("path", path))
			return nil
		}

		if emit {
			w.send(model.FileEvent{Kind: model.EventCreated, Path: path, Timestamp: time.Now()})
		}
		return nil
	})
}

func (w *FSNotify) run() {
	defer close(w.eventCh)

	for {
		select {
		case <-w.doneCh:
			w.log.Debug("watcher stopping",
				zap.String("dir", w.root))
			return

		case fsEvent, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if fsEvent.Op.Has(fsnotify.Create) && w.recursive {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if err := w.add(fsEvent.Name, true); err != nil {
						w.log.Warn("failed to watch new directory",
							zap.String("path", fsEvent.Name),
							zap.Error(err))
					} else {
						w.log.Debug("added new directory to watch",
							zap.String("path", fsEvent.Name))
					}
					continue
				}
			}

			kind := toEventKind(fsEvent.Op)
			if kind == "" {
				continue
			}

			w.send(model.FileEvent{
				Kind:      kind,
				Path:      fsEvent.Name,
				Timestamp: time.Now(),
			})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			w.log.Error("watcher error",
				zap.Error(err))
		}
	}
}

func (w *FSNotify) send(event model.FileEvent) {
	select {
	case w.eventCh <- event:
	default:
		w.log.Warn("event channel is full, dropping event",
			zap.String("path", event.Path))
	}
}

func (w *FSNotify) Events() <-chan model.FileEvent {
	return w.eventCh
}

func (w *FSNotify) Stop() {
	w.stopOnce.Do(func() {
		close(w.doneCh)
		_ = w.fw.Close()
	})
}

func toEventKind(op fsnotify.Op) model.EventKind {
	switch {
	case op.Has(fsnotify.Create):
		return model.EventCreated
	case op.Has(fsnotify.Write):
		return model.EventChanged
	default:
		return ""
	}
}
