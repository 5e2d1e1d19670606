// Package syncer mirrors save files from one root into another as they
// appear, in either direction between the local save folder and the shared
// drop folder.
package syncer

import (
	"time"
	"turnsync/internal/model"
	"turnsync/internal/notify"
	"turnsync/internal/turn"
	"turnsync/internal/watcher"

	"go.uber.org/zap"
)

const (
	DirectionPush = "push"
	DirectionPull = "pull"
)

type Endpoint struct {
	Root      string
	Ext       string
	Recursive bool
}

// Gate decides whether a matching file should be copied.
type Gate func(path string) bool

type HistoryRecorder interface {
	Save(direction string, result model.SyncResult) error
}

type SourceFactory func(root string, recursive bool) (watcher.Source, error)

type Options struct {
	Name       string
	Endpoint   Endpoint
	TargetRoot string
	Kinds      []model.EventKind
	Gate       Gate
	IgnoreList []string
	Debounce   time.Duration
	NewSource  SourceFactory
	Notifier   notify.Notifier
	History    HistoryRecorder
	Log        *zap.Logger
}

// Push watches the local root for order files and copies every creation or
// edit to the shared root.
func Push(localRoot, sharedRoot string) Options {
	return Options{
		Name:       DirectionPush,
		Endpoint:   Endpoint{Root: localRoot, Ext: turn.OrderExt, Recursive: true},
		TargetRoot: sharedRoot,
		Kinds:      []model.EventKind{model.EventCreated, model.EventChanged},
	}
}

// Pull watches the shared root for new turn files and copies those that
// belong to a nation staged locally.
func Pull(localRoot, sharedRoot string) Options {
	return Options{
		Name:       DirectionPull,
		Endpoint:   Endpoint{Root: sharedRoot, Ext: turn.TurnExt, Recursive: true},
		TargetRoot: localRoot,
		Kinds:      []model.EventKind{model.EventCreated},
		Gate: func(path string) bool {
			return turn.IsMyTurn(localRoot, path)
		},
	}
}

// FSNotifySource builds native watch sources.
func FSNotifySource(bufferSize int, log *zap.Logger) SourceFactory {
	return func(root string, recursive bool) (watcher.Source, error) {
		return watcher.NewFSNotify(root, recursive, bufferSize, log)
	}
}

// PollSource builds polling sources.
func PollSource(interval time.Duration, bufferSize int, log *zap.Logger) SourceFactory {
	return func(root string, recursive bool) (watcher.Source, error) {
		return watcher.NewPoller(root, recursive, interval, bufferSize, log)
	}
}
