// Package watcher turns filesystem changes under a root directory into a
// stream of model.FileEvent values.
//
// Sources are interchangeable: FSNotify uses native OS notifications and
// Poller rescans the tree on an interval for filesystems where those do
// not fire (network shares, some sync clients).
package watcher

import "turnsync/internal/model"

type Source interface {
	Events() <-chan model.FileEvent
	Start() error
	Stop()
}
