package watcher

import (
	"path/filepath"
	"strings"
	"turnsync/internal/model"
)

// Filter passes events for files with the given extension (compared without
// case) whose path has no component matching an ignore pattern.
func Filter(inCh <-chan model.FileEvent, ext string, ignoreList []string) <-chan model.FileEvent {
	outCh := make(chan model.FileEvent, cap(inCh))

	go func() {
		defer close(outCh)

		for event := range inCh {
			if !Matches(event.Path, ext, ignoreList) {
				continue
			}
			outCh <- event
		}
	}()

	return outCh
}

func Matches(path, ext string, ignoreList []string) bool {
	if ext != "" && !strings.EqualFold(filepath.Ext(path), ext) {
		return false
	}

	return !shouldIgnore(path, ignoreList)
}

func shouldIgnore(path string, ignoreList []string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")

	for _, part := range parts {
		for _, pattern := range ignoreList {
			matched, err := filepath.Match(pattern, part)
			if err == nil && matched {
				return true
			}
		}
	}

	return false
}
