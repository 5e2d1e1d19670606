package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"turnsync/internal/model"

	"go.uber.org/zap"
)

type fileStamp struct {
	size    int64
	modTime time.Time
}

// Poller detects created and changed files by comparing periodic scans of
// the tree. Files present at Start are the baseline and are not reported.
type Poller struct {
	root      string
	recursive bool
	interval  time.Duration
	log       *zap.Logger
	known     map[string]fileStamp
	eventCh   chan model.FileEvent
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewPoller(root string, recursive bool, interval time.Duration, bufferSize int, log *zap.Logger) (*Poller, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	return &Poller{
		root:      absRoot,
		recursive: recursive,
		interval:  interval,
		log:       log,
		eventCh:   make(chan model.FileEvent, bufferSize),
		stopCh:    make(chan struct{}),
	}, nil
}

func (p *Poller) Events() <-chan model.FileEvent {
	return p.eventCh
}

func (p *Poller) Start() error {
	known, err := p.scan()
	if err != nil {
		return fmt.Errorf("source directory not readable: %w", err)
	}
	p.known = known

	go p.poll()

	p.log.Info("poller started",
		zap.String("dir", p.root),
		zap.Duration("interval", p.interval))
	return nil
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

func (p *Poller) poll() {
	defer close(p.eventCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			current, err := p.scan()
			if err != nil {
				p.log.Warn("poll error",
					zap.String("dir", p.root),
					zap.Error(err))
				continue
			}

			for _, event := range p.diff(current) {
				select {
				case p.eventCh <- event:
				case <-p.stopCh:
					return
				}
			}
			p.known = current
		}
	}
}

func (p *Poller) diff(current map[string]fileStamp) []model.FileEvent {
	now := time.Now()
	var events []model.FileEvent

	for path, stamp := range current {
		prev, ok := p.known[path]
		switch {
		case !ok:
			events = append(events, model.FileEvent{Kind: model.EventCreated, Path: path, Timestamp: now})
		case prev != stamp:
			events = append(events, model.FileEvent{Kind: model.EventChanged, Path: path, Timestamp: now})
		}
	}

	return events
}

func (p *Poller) scan() (map[string]fileStamp, error) {
	files := make(map[string]fileStamp)

	err := filepath.WalkDir(p.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != p.root && !p.recursive {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// Removed between listing and stat.
			return nil
		}

		files[path] = fileStamp{size: info.Size(), modTime: info.ModTime()}
		return nil
	})

	return files, err
}
